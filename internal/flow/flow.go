// Package flow turns a parsed résumé into the ordered list of blocks the
// layout engine consumes: the sidebar stream, one column break, then the
// main stream.
package flow

import "fmt"

// Block is one element of the flow.
type Block interface {
	block()
}

// Text is a paragraph set in a named style.
type Text struct {
	Style string
	Text  string
}

// Spacer is vertical space, in points.
type Spacer struct {
	Height float64
}

// ColumnBreak moves the cursor to the top of the main region.
type ColumnBreak struct{}

func (Text) block() {}
func (Spacer) block() {}
func (ColumnBreak) block() {}

func (t Text) String() string { return fmt.Sprintf("%s(%q)", t.Style, t.Text) }
func (s Spacer) String() string { return fmt.Sprintf("Spacer(%.2f)", s.Height) }
func (ColumnBreak) String() string { return "ColumnBreak" }

// Split returns the blocks before and after the first ColumnBreak.
// found is false when the flow has no break.
func Split(blocks []Block) (side, main []Block, found bool) {
	for i, b := range blocks {
		if _, ok := b.(ColumnBreak); ok {
			return blocks[:i], blocks[i+1:], true
		}
	}
	return blocks, nil, false
}
