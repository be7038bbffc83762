package cv2pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-cv2pdf/internal/fileutil"
	"github.com/alnah/go-cv2pdf/internal/flow"
	"github.com/alnah/go-cv2pdf/internal/layout"
	"github.com/alnah/go-cv2pdf/internal/render"
	"github.com/alnah/go-cv2pdf/internal/table"
	"github.com/alnah/go-cv2pdf/internal/theme"
)

// outputPerm is the permission of PDFs written by ConvertFile.
const outputPerm = 0o644

// Converter runs the CSV-to-PDF pipeline: parse, build, lay out, render.
// Create with NewConverter, use Convert or ConvertFile, and Close when done.
// A Converter must not be used by several goroutines at once; use a
// ConverterPool for parallel work.
type Converter struct {
	cfg      converterConfig
	log      *zap.Logger
	theme    *theme.Theme
	measure  layout.Measurer
	engine   *layout.Engine
	renderer render.Renderer
}

// NewConverter creates a Converter with the default theme and the native
// backend. Use options to customize behavior (e.g., WithBackend, WithTimeout).
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{backend: BackendNative, timeout: defaultTimeout},
		log: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.theme == nil {
		c.theme = theme.Default()
	}
	if err := c.theme.Validate(); err != nil {
		return nil, fmt.Errorf("validating theme: %w", err)
	}
	c.engine = layout.New(c.theme, c.measure)

	// Create renderer if not injected (e.g., by tests)
	if c.renderer == nil {
		r, err := render.New(strings.ToLower(c.cfg.backend), render.WithTimeout(c.cfg.timeout))
		if err != nil {
			return nil, err
		}
		c.renderer = r
	}

	return c, nil
}

// Convert runs the full pipeline on in-memory CSV and returns the PDF.
// The context is checked between stages. A malformed table yields an error
// matching ErrFormat and no PDF. Recovers from internal panics to prevent
// crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: internal error: %v", ErrConversion, r)
		}
	}()

	if len(input.CSV) == 0 {
		// No header either: a format error like any other malformed table.
		return nil, fmt.Errorf("%w: %w", ErrFormat, ErrEmptyInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	doc, err := table.ParseBytes(input.CSV)
	if err != nil {
		return nil, err
	}
	c.log.Debug("parsed table",
		zap.Int("sections", doc.Len()),
		zap.Duration("elapsed", time.Since(start)))

	start = time.Now()
	blocks := flow.Build(doc, c.theme)
	c.log.Debug("built flow",
		zap.Int("blocks", len(blocks)),
		zap.Duration("elapsed", time.Since(start)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	laid, err := c.engine.Layout(blocks)
	if err != nil {
		return nil, fmt.Errorf("laying out document: %w", err)
	}
	title, author := flow.Meta(doc)
	laid.Meta = layout.Meta{Title: title, Author: author}
	overflowed := countOverflow(laid)
	c.log.Debug("laid out document",
		zap.Int("pages", len(laid.Pages)),
		zap.Duration("elapsed", time.Since(start)))
	if overflowed > 0 {
		c.log.Warn("blocks taller than their region", zap.Int("count", overflowed))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	var buf bytes.Buffer
	if err := c.renderer.Render(ctx, laid, &buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	c.log.Debug("rendered PDF",
		zap.Int("bytes", buf.Len()),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{
		PDF:        buf.Bytes(),
		Pages:      len(laid.Pages),
		Title:      title,
		Author:     author,
		Overflowed: overflowed,
	}, nil
}

// ConvertFile reads the table at src and writes the PDF to dst. The PDF
// is written to a temporary file and renamed, so dst is never left
// half-written. Read failures wrap ErrReadInput, write failures wrap
// ErrWriteOutput; both keep the underlying cause for errors.Is.
func (c *Converter) ConvertFile(ctx context.Context, src, dst string) (*Result, error) {
	data, err := os.ReadFile(src) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	res, err := c.Convert(ctx, Input{CSV: data})
	if err != nil {
		return nil, err
	}

	if err := fileutil.WriteFileAtomic(dst, res.PDF, outputPerm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	c.log.Info("wrote PDF", zap.String("path", dst), zap.Int("pages", res.Pages))
	return res, nil
}

// Close releases renderer resources (the headless browser, if started).
func (c *Converter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}

func countOverflow(doc *layout.Document) int {
	n := 0
	for _, p := range doc.Placements {
		if p.Overflow {
			n++
		}
	}
	return n
}
