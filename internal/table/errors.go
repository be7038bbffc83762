package table

import (
	"errors"
	"fmt"
)

// Sentinel errors for table parsing.
var (
	ErrFormat        = errors.New("malformed input table")
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidOrder  = errors.New("order is not an integer")
	ErrMalformedCSV  = errors.New("invalid CSV syntax")
)

// FormatError reports a structural problem in the input table.
// It matches both ErrFormat and its specific cause with errors.Is.
type FormatError struct {
	Line   int    // 1-based line, 0 when the problem is the header itself
	Column string // column name, empty when not applicable
	Value  string // offending cell value
	Err    error  // ErrMissingColumn, ErrInvalidOrder or ErrMalformedCSV
}

func (e *FormatError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("line %d: column %q: %v: %q", e.Line, e.Column, e.Err, e.Value)
	case e.Line > 0 && e.Value != "":
		return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Value)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	case e.Column != "":
		return fmt.Sprintf("%v: %q", e.Err, e.Column)
	case e.Value != "":
		return fmt.Sprintf("%v: %s", e.Err, e.Value)
	default:
		return e.Err.Error()
	}
}

func (e *FormatError) Unwrap() []error {
	return []error{ErrFormat, e.Err}
}
