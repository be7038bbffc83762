// Package render serializes laid-out documents to PDF.
//
// Renderers are pure sinks: every layout decision has already been made by
// the layout package, so a renderer only paints fills and lines where it is
// told to.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alnah/go-cv2pdf/internal/layout"
)

// Sentinel errors for rendering.
var (
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrWrite          = errors.New("writing PDF")
	ErrUnknownBackend = errors.New("unknown renderer backend")
)

// Backend names accepted by New.
const (
	BackendNative = "native"
	BackendChrome = "chrome"
)

// Renderer writes a laid-out document as PDF bytes to w.
// Close releases any external resources held by the renderer.
type Renderer interface {
	Render(ctx context.Context, doc *layout.Document, w io.Writer) error
	Close() error
}

// Compile-time interface implementation checks.
var (
	_ Renderer = (*PDF)(nil)
	_ Renderer = (*Chrome)(nil)
)

// New returns the renderer for a backend name. An empty name selects the
// native backend.
func New(backend string, opts ...ChromeOption) (Renderer, error) {
	switch backend {
	case "", BackendNative:
		return NewPDF(), nil
	case BackendChrome:
		return NewChrome(opts...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendNative, BackendChrome}
}
