package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Column names of the input table.
const (
	ColSection    = "section"
	ColSubsection = "subsection"
	ColType       = "type"
	ColContent    = "content"
	ColOrder      = "order"
)

// requiredColumns lists header names in the canonical order.
var requiredColumns = []string{ColSection, ColSubsection, ColType, ColContent, ColOrder}

// commentPrefix marks rows that are skipped entirely.
const commentPrefix = "#"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads a CSV table and returns the grouped, ordered Document.
// The header must name the five columns section, subsection, type, content
// and order, in any position; extra columns are ignored.
// On any FormatError no Document is returned.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data)
}

// ParseBytes is Parse over an in-memory table.
func ParseBytes(data []byte) (*Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &FormatError{Column: ColSection, Err: ErrMissingColumn}
	}
	if err != nil {
		return nil, csvError(err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := cr.FieldPos(0)

		rec, keep, err := parseRow(row, idx, line)
		if err != nil {
			return nil, err
		}
		if keep {
			records = append(records, rec)
		}
	}

	return NewDocument(records), nil
}

// columnIndex holds the position of each required column.
type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(requiredColumns))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, &FormatError{Column: name, Err: ErrMissingColumn}
		}
	}
	return idx, nil
}

// cell returns the trimmed value of a column; absent trailing cells read as empty.
func (c columnIndex) cell(row []string, name string) string {
	i := c[name]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseRow converts one CSV row. keep is false for comment rows.
func parseRow(row []string, idx columnIndex, line int) (rec Record, keep bool, err error) {
	section := idx.cell(row, ColSection)
	if IsComment(section) {
		return Record{}, false, nil
	}

	order, err := parseOrder(idx.cell(row, ColOrder))
	if err != nil {
		return Record{}, false, &FormatError{
			Line:   line,
			Column: ColOrder,
			Value:  idx.cell(row, ColOrder),
			Err:    ErrInvalidOrder,
		}
	}

	return Record{
		Section:    section,
		Subsection: idx.cell(row, ColSubsection),
		Type:       idx.cell(row, ColType),
		Content:    idx.cell(row, ColContent),
		Order:      order,
		Line:       line,
	}, true, nil
}

// IsComment reports whether a section cell marks a comment row.
// Blank sections are treated as comments.
func IsComment(section string) bool {
	section = strings.TrimSpace(section)
	return section == "" || strings.HasPrefix(section, commentPrefix)
}

// parseOrder reads the order cell. Blank means 0.
func parseOrder(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &FormatError{Line: pe.Line, Value: pe.Err.Error(), Err: ErrMalformedCSV}
	}
	return &FormatError{Value: err.Error(), Err: ErrMalformedCSV}
}
