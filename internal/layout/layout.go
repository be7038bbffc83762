// Package layout places flow blocks on pages of a two-column template.
//
// Every page has the same template: a sidebar frame on the left, whose
// background is filled on each page, and a main frame on the right. Blocks
// flow top-down through the current region; a text block that does not fit
// starts a new page in the same region. Output coordinates are PDF user
// space: points, origin at the bottom-left corner of the page.
package layout

import (
	"errors"
	"fmt"

	"github.com/alnah/go-cv2pdf/internal/flow"
	"github.com/alnah/go-cv2pdf/internal/theme"
)

// Sentinel errors for layout.
var (
	ErrUnknownStyle = errors.New("unknown paragraph style")
	ErrUnknownBlock = errors.New("unknown block type")
)

// descentRatio places the baseline above the bottom of a line box.
const descentRatio = 0.2

// epsilon absorbs float error when testing whether a block fits.
const epsilon = 1e-6

// Region identifies one column of the page template.
type Region int

const (
	Sidebar Region = iota
	Main
)

func (r Region) String() string {
	if r == Sidebar {
		return "sidebar"
	}
	return "main"
}

// Rect is an axis-aligned rectangle in PDF user space.
type Rect struct {
	X, Y, W, H float64
}

// Fill is a solid rectangle painted before any text on a page.
type Fill struct {
	Rect  Rect
	Color theme.Color
}

// Line is one line of text; X and Y locate the start of its baseline.
type Line struct {
	X, Y  float64
	Font  string
	Size  float64
	Color theme.Color
	Text  string
}

// Page holds the painted content of one page, in paint order.
type Page struct {
	Fills []Fill
	Lines []Line
}

// Placement records where a block went. Top is measured downwards from
// the top edge of the page.
type Placement struct {
	Block    int
	Page     int
	Region   Region
	Top      float64
	Height   float64
	Dropped  bool // spacer that did not fit
	Overflow bool // block taller than its whole region
}

// Meta is document-level metadata carried to the renderer.
type Meta struct {
	Title  string
	Author string
}

// Document is the laid-out result.
type Document struct {
	Width      float64
	Height     float64
	Pages      []Page
	Placements []Placement
	Meta       Meta
}

// Fonts returns the distinct base fonts used, in first-use order.
func (d *Document) Fonts() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range d.Pages {
		for _, l := range p.Lines {
			if !seen[l.Font] {
				seen[l.Font] = true
				out = append(out, l.Font)
			}
		}
	}
	return out
}

// Engine lays out flows with a theme and a text measurer.
// An Engine holds no per-call state and may be reused.
type Engine struct {
	theme   *theme.Theme
	measure Measurer
}

// New returns an Engine. A nil measurer selects NewFontMetrics.
func New(th *theme.Theme, m Measurer) *Engine {
	if m == nil {
		m = NewFontMetrics()
	}
	return &Engine{theme: th, measure: m}
}

// box is a region content area in top-down page coordinates.
type box struct {
	left, right, top, bottom float64
}

func (b box) width() float64  { return b.right - b.left }
func (b box) height() float64 { return b.bottom - b.top }

func contentBox(f theme.Frame, pageHeight float64) box {
	return box{
		left:   f.X + f.Padding.Left,
		right:  f.X + f.Width - f.Padding.Right,
		top:    f.Padding.Top,
		bottom: pageHeight - f.Padding.Bottom,
	}
}

// cursor is the mutable state of one Layout call.
type cursor struct {
	doc    *Document
	region Region
	y      float64
	empty  bool // nothing placed in the current region of the current page
}

// Layout places blocks and returns the paginated document. The first page
// exists even when blocks is empty.
func (e *Engine) Layout(blocks []flow.Block) (*Document, error) {
	if err := e.theme.Validate(); err != nil {
		return nil, err
	}

	c := &cursor{doc: &Document{Width: e.theme.PageWidth, Height: e.theme.PageHeight}}
	e.newPage(c)
	c.region = Sidebar
	c.y = e.box(Sidebar).top

	for i, b := range blocks {
		var err error
		switch b := b.(type) {
		case flow.Text:
			err = e.placeText(c, i, b)
		case flow.Spacer:
			e.placeSpacer(c, i, b)
		case flow.ColumnBreak:
			e.columnBreak(c)
		default:
			err = fmt.Errorf("%w: %T", ErrUnknownBlock, b)
		}
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
	}
	return c.doc, nil
}

func (e *Engine) box(r Region) box {
	if r == Sidebar {
		return contentBox(e.theme.Sidebar, e.theme.PageHeight)
	}
	return contentBox(e.theme.Main, e.theme.PageHeight)
}

// newPage appends a page carrying the sidebar background and resets the
// cursor to the top of the current region.
func (e *Engine) newPage(c *cursor) {
	sb := e.theme.Sidebar
	c.doc.Pages = append(c.doc.Pages, Page{
		Fills: []Fill{{
			Rect:  Rect{X: sb.X, Y: 0, W: sb.Width, H: e.theme.PageHeight},
			Color: e.theme.SidebarFill,
		}},
	})
	c.y = e.box(c.region).top
	c.empty = true
}

func (e *Engine) placeText(c *cursor, idx int, t flow.Text) error {
	st, ok := e.theme.Style(t.Style)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, t.Style)
	}

	bx := e.box(c.region)
	avail := bx.width() - st.LeftIndent - st.RightIndent
	lines := wrap(e.measure, t.Text, st.Font, st.Size, avail)
	h := st.SpaceBefore + float64(len(lines))*st.Leading + st.SpaceAfter

	// An oversized block is placed in an empty region rather than pushed
	// onto page after page.
	if c.y+h > bx.bottom+epsilon && (!c.empty || h <= bx.height()+epsilon) {
		e.newPage(c)
	}

	page := len(c.doc.Pages) - 1
	top := c.y
	c.doc.Placements = append(c.doc.Placements, Placement{
		Block:    idx,
		Page:     page,
		Region:   c.region,
		Top:      top,
		Height:   h,
		Overflow: h > bx.height()+epsilon,
	})

	pg := &c.doc.Pages[page]
	lineTop := top + st.SpaceBefore
	for _, s := range lines {
		x := bx.left + st.LeftIndent
		if st.Align == theme.AlignCenter {
			x += (avail - e.measure.Width(s, st.Font, st.Size)) / 2
		}
		baseline := lineTop + st.Leading - descentRatio*st.Size
		pg.Lines = append(pg.Lines, Line{
			X:     x,
			Y:     e.theme.PageHeight - baseline,
			Font:  st.Font,
			Size:  st.Size,
			Color: st.Color,
			Text:  s,
		})
		lineTop += st.Leading
	}

	c.y = top + h
	c.empty = false
	return nil
}

// placeSpacer advances the cursor, or drops the spacer when it would
// cross the bottom of the region. Spacers never start a page.
func (e *Engine) placeSpacer(c *cursor, idx int, s flow.Spacer) {
	bx := e.box(c.region)
	p := Placement{
		Block:  idx,
		Page:   len(c.doc.Pages) - 1,
		Region: c.region,
		Top:    c.y,
		Height: s.Height,
	}
	if c.y+s.Height > bx.bottom+epsilon {
		p.Dropped = true
	} else {
		c.y += s.Height
	}
	c.doc.Placements = append(c.doc.Placements, p)
}

// columnBreak moves to the top of the main region of the current page.
// A break issued from the main region continues on a new page.
func (e *Engine) columnBreak(c *cursor) {
	if c.region == Main {
		e.newPage(c)
		return
	}
	c.region = Main
	c.y = e.box(Main).top
	c.empty = true
}
