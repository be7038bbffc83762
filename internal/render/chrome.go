package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-cv2pdf/internal/fileutil"
	"github.com/alnah/go-cv2pdf/internal/layout"
	"github.com/alnah/go-cv2pdf/internal/process"
)

// DefaultChromeTimeout bounds page loading when the context has no deadline.
const DefaultChromeTimeout = 30 * time.Second

// pointsPerInch converts layout points to Chrome paper inches.
const pointsPerInch = 72.0

// ascentRatio approximates where the baseline sits inside a line box of
// height 1em, so absolutely positioned spans land on the layout baseline.
const ascentRatio = 0.8

// filePrinter prints a local HTML file to PDF. It lets tests run the
// Chrome backend without a browser.
type filePrinter interface {
	PrintFile(ctx context.Context, path string, opts *proto.PagePrintToPDF) ([]byte, error)
	Close() error
}

var _ filePrinter = (*rodPrinter)(nil)

// Chrome renders documents by printing absolutely positioned HTML with
// headless Chrome. The browser is started on first use and released by
// Close. A Chrome renderer must not be used by several goroutines at once.
type Chrome struct {
	printer filePrinter
	timeout time.Duration
}

// ChromeOption configures a Chrome renderer.
type ChromeOption func(*Chrome)

// WithTimeout sets the page-load timeout used without a context deadline.
func WithTimeout(d time.Duration) ChromeOption {
	return func(c *Chrome) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// withPrinter replaces the browser, for tests.
func withPrinter(p filePrinter) ChromeOption {
	return func(c *Chrome) { c.printer = p }
}

// NewChrome returns a Chrome renderer. No browser is started until the
// first Render.
func NewChrome(opts ...ChromeOption) *Chrome {
	c := &Chrome{timeout: DefaultChromeTimeout}
	for _, opt := range opts {
		opt(c)
	}
	if c.printer == nil {
		c.printer = &rodPrinter{timeout: c.timeout}
	}
	return c
}

// Render implements Renderer.
func (c *Chrome) Render(ctx context.Context, doc *layout.Document, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc == nil || len(doc.Pages) == 0 {
		return fmt.Errorf("%w: document has no pages", ErrPDFGeneration)
	}

	path, cleanup, err := fileutil.WriteTempFile(buildHTML(doc), "html")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPDFGeneration, err)
	}
	defer cleanup()

	data, err := c.printer.PrintFile(ctx, path, printOptions(doc))
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Close releases the browser.
func (c *Chrome) Close() error {
	if c.printer != nil {
		return c.printer.Close()
	}
	return nil
}

// printOptions sizes the paper from the page geometry; all spacing already
// lives in the layout, so margins are zero.
func printOptions(doc *layout.Document) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(doc.Width / pointsPerInch),
		PaperHeight:       floatPtr(doc.Height / pointsPerInch),
		MarginTop:         floatPtr(0),
		MarginBottom:      floatPtr(0),
		MarginLeft:        floatPtr(0),
		MarginRight:       floatPtr(0),
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

// buildHTML emits one fixed-size section per page. Coordinates are
// converted from PDF user space (bottom-left origin) to CSS (top-left).
func buildHTML(doc *layout.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>%s</title><style>
@page { size: %.2fpt %.2fpt; margin: 0 }
* { margin: 0; padding: 0 }
body { -webkit-print-color-adjust: exact; print-color-adjust: exact }
section { position: relative; overflow: hidden; width: %.2fpt; height: %.2fpt; page-break-after: always }
section:last-child { page-break-after: auto }
div, span { position: absolute; white-space: pre; line-height: 1 }
</style></head><body>
`, html.EscapeString(doc.Meta.Title), doc.Width, doc.Height, doc.Width, doc.Height)

	for _, pg := range doc.Pages {
		b.WriteString("<section>\n")
		for _, f := range pg.Fills {
			top := doc.Height - f.Rect.Y - f.Rect.H
			fmt.Fprintf(&b, `<div style="left:%.2fpt;top:%.2fpt;width:%.2fpt;height:%.2fpt;background:%s"></div>`+"\n",
				f.Rect.X, top, f.Rect.W, f.Rect.H, f.Color.Hex())
		}
		for _, l := range pg.Lines {
			top := doc.Height - l.Y - ascentRatio*l.Size
			fmt.Fprintf(&b, `<span style="left:%.2fpt;top:%.2fpt;font:%s;color:%s">%s</span>`+"\n",
				l.X, top, cssFont(l.Font, l.Size), l.Color.Hex(), html.EscapeString(l.Text))
		}
		b.WriteString("</section>\n")
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

// cssFont maps a Standard 14 base font name to a CSS font shorthand.
func cssFont(base string, size float64) string {
	style, weight := "normal", "normal"
	if strings.Contains(base, "Bold") {
		weight = "bold"
	}
	if strings.Contains(base, "Oblique") || strings.Contains(base, "Italic") {
		style = "italic"
	}
	family := "Helvetica, Arial, sans-serif"
	switch {
	case strings.HasPrefix(base, "Courier"):
		family = `"Courier New", Courier, monospace`
	case strings.HasPrefix(base, "Times"):
		family = `"Times New Roman", Times, serif`
	}
	return fmt.Sprintf("%s %s %.2fpt/1 %s", style, weight, size, family)
}

// rodPrinter prints with go-rod. Rod downloads Chromium on first run when
// no browser is installed.
type rodPrinter struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

// ensureBrowser lazily starts and connects to the browser.
func (r *rodPrinter) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Pre-installed browser (Docker and CI images).
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l
	r.browser = browser
	return nil
}

// PrintFile opens a local HTML file and prints it to PDF.
func (r *rodPrinter) PrintFile(ctx context.Context, path string, opts *proto.PagePrintToPDF) ([]byte, error) {
	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream, err := page.Context(ctx).PDF(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, stream); err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return buf.Bytes(), nil
}

// Close closes the browser, then kills its process group so no renderer
// children outlive us.
func (r *rodPrinter) Close() error {
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	process.KillProcessGroup(r.launcher.PID())
	r.launcher.Kill()
	r.browser = nil
	r.launcher = nil
	return err
}
