package cv2pdf

import (
	"errors"

	"github.com/alnah/go-cv2pdf/internal/layout"
	"github.com/alnah/go-cv2pdf/internal/render"
	"github.com/alnah/go-cv2pdf/internal/table"
)

// Sentinel errors for library operations.
var (
	ErrEmptyInput  = errors.New("CSV content cannot be empty") // always wrapped with ErrFormat
	ErrReadInput   = errors.New("reading input table")
	ErrWriteOutput = errors.New("writing output PDF")
	ErrConversion  = errors.New("conversion failed")

	// ErrFormat matches every malformed-table error, see FormatError.
	ErrFormat = table.ErrFormat

	// Table format causes, matched alongside ErrFormat.
	ErrMissingColumn = table.ErrMissingColumn
	ErrInvalidOrder  = table.ErrInvalidOrder
	ErrMalformedCSV  = table.ErrMalformedCSV

	// Layout errors.
	ErrUnknownStyle = layout.ErrUnknownStyle

	// Renderer errors.
	ErrUnknownBackend = render.ErrUnknownBackend
	ErrPDFGeneration  = render.ErrPDFGeneration
	ErrBrowserConnect = render.ErrBrowserConnect
	ErrPageCreate     = render.ErrPageCreate
	ErrPageLoad       = render.ErrPageLoad
)

// FormatError reports a structural problem in the input table, with the
// offending line and column. Use errors.As to inspect it.
type FormatError = table.FormatError
