package cv2pdf

import (
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-cv2pdf/internal/layout"
	"github.com/alnah/go-cv2pdf/internal/render"
	"github.com/alnah/go-cv2pdf/internal/theme"
)

// Backend names accepted by WithBackend.
const (
	BackendNative = render.BackendNative
	BackendChrome = render.BackendChrome
)

// Backends lists the accepted backend names.
func Backends() []string {
	return render.Backends()
}

// Input is one conversion request.
type Input struct {
	// CSV is the raw table: header section,subsection,type,content,order.
	// A leading UTF-8 byte order mark is ignored.
	CSV []byte
}

// Result is the outcome of a successful conversion.
type Result struct {
	PDF    []byte
	Pages  int
	Title  string // document title written to the PDF metadata
	Author string

	// Overflowed counts text blocks taller than their whole region. They
	// are still placed and run past the bottom margin.
	Overflowed int
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	backend string
	timeout time.Duration
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the page-load timeout of the chrome backend.
// Contexts with a deadline take precedence. Panics if d <= 0.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("cv2pdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithBackend selects the PDF backend: BackendNative (default) or
// BackendChrome. Unknown names make NewConverter fail with ErrUnknownBackend.
func WithBackend(name string) Option {
	return func(c *Converter) {
		c.cfg.backend = name
	}
}

// WithLogger sets the logger for stage timings and warnings.
// A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.log = l
		}
	}
}

// withRenderer replaces the backend, for tests.
func withRenderer(r render.Renderer) Option {
	return func(c *Converter) {
		c.renderer = r
	}
}

// withTheme replaces the default theme, for tests.
func withTheme(th *theme.Theme) Option {
	return func(c *Converter) {
		c.theme = th
	}
}

// withMeasurer replaces the font metrics, for tests.
func withMeasurer(m layout.Measurer) Option {
	return func(c *Converter) {
		c.measure = m
	}
}
