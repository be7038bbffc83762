package render

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/benedoc-inc/pdfer"
	"github.com/benedoc-inc/pdfer/writer"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-cv2pdf/internal/layout"
)

// pdfVersion is the header version; nothing beyond 1.4 features is used.
const pdfVersion = "1.4"

// PDF renders documents natively with the Standard 14 Type1 fonts.
// It holds no external resources and is safe for concurrent use.
type PDF struct {
	compress bool
	producer string
	now      func() time.Time
}

// PDFOption configures a PDF renderer.
type PDFOption func(*PDF)

// WithCompression toggles Flate compression of page content streams.
func WithCompression(on bool) PDFOption {
	return func(p *PDF) { p.compress = on }
}

// WithProducer sets the Info dictionary Producer entry.
func WithProducer(s string) PDFOption {
	return func(p *PDF) { p.producer = s }
}

// withClock fixes CreationDate in tests.
func withClock(now func() time.Time) PDFOption {
	return func(p *PDF) { p.now = now }
}

// NewPDF returns a native renderer with compressed content streams.
func NewPDF(opts ...PDFOption) *PDF {
	p := &PDF{
		compress: true,
		producer: "go-cv2pdf (pdfer " + pdfer.Version() + ")",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Close implements Renderer; the native backend holds nothing.
func (p *PDF) Close() error { return nil }

// Render implements Renderer.
func (p *PDF) Render(ctx context.Context, doc *layout.Document, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc == nil || len(doc.Pages) == 0 {
		return fmt.Errorf("%w: document has no pages", ErrPDFGeneration)
	}

	pw := writer.NewPDFWriter()
	pw.SetVersion(pdfVersion)

	// Font resources are shared by every page.
	fonts := make(map[string]string)
	var res strings.Builder
	res.WriteString("<</Font<<")
	for i, name := range doc.Fonts() {
		ref := "/F" + strconv.Itoa(i+1)
		n := pw.AddObject(fmt.Appendf(nil,
			"<</Type/Font/Subtype/Type1/BaseFont/%s/Encoding/WinAnsiEncoding>>", name))
		fonts[name] = ref
		fmt.Fprintf(&res, "%s %d 0 R", ref, n)
	}
	res.WriteString(">>>>")

	// The page tree is written once all kids are known.
	pagesNum := pw.AddObject(nil)
	mediaBox := fmt.Sprintf("[0 0 %s %s]", num(doc.Width), num(doc.Height))

	kids := make([]string, 0, len(doc.Pages))
	for i := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		content := pageContent(&doc.Pages[i], fonts)
		contentNum := pw.AddStreamObject(writer.Dictionary{}, content, p.compress)
		pageNum := pw.AddObject(fmt.Appendf(nil,
			"<</Type/Page/Parent %d 0 R/MediaBox%s/Resources%s/Contents %d 0 R>>",
			pagesNum, mediaBox, res.String(), contentNum))
		kids = append(kids, strconv.Itoa(pageNum)+" 0 R")
	}
	pw.SetObject(pagesNum, fmt.Appendf(nil,
		"<</Type/Pages/Kids[%s]/Count %d>>", strings.Join(kids, " "), len(kids)))

	catalog := pw.AddObject(fmt.Appendf(nil, "<</Type/Catalog/Pages %d 0 R>>", pagesNum))
	pw.SetRoot(catalog)
	pw.SetInfo(pw.AddObject(p.info(doc.Meta)))

	if err := pw.Write(w); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// pageContent paints fills first, then every line as its own text object.
func pageContent(pg *layout.Page, fonts map[string]string) []byte {
	cs := writer.NewContentStream()
	for _, f := range pg.Fills {
		r, g, b := f.Color.RGB()
		cs.SaveState().
			SetFillColorRGB(r, g, b).
			Rectangle(f.Rect.X, f.Rect.Y, f.Rect.W, f.Rect.H).
			Fill().
			RestoreState()
	}
	for _, l := range pg.Lines {
		r, g, b := l.Color.RGB()
		cs.BeginText().
			SetFillColorRGB(r, g, b).
			SetFont(fonts[l.Font], l.Size).
			SetTextMatrix(1, 0, 0, 1, l.X, l.Y).
			Raw("(" + escapeString(encodeWinAnsi(l.Text)) + ") Tj").
			EndText()
	}
	return cs.Bytes()
}

// info builds the Info dictionary. Text strings are UTF-16BE with a BOM so
// that non-Latin metadata survives.
func (p *PDF) info(m layout.Meta) []byte {
	var b strings.Builder
	b.WriteString("<<")
	if m.Title != "" {
		b.WriteString("/Title" + textString(m.Title))
	}
	if m.Author != "" {
		b.WriteString("/Author" + textString(m.Author))
	}
	if p.producer != "" {
		b.WriteString("/Producer" + textString(p.producer))
	}
	b.WriteString("/CreationDate(" + pdfDate(p.now()) + ")")
	b.WriteString(">>")
	return []byte(b.String())
}

// encodeWinAnsi maps text to the single-byte encoding declared on every
// font. Runes outside Windows-1252 become '?'.
func encodeWinAnsi(s string) []byte {
	s = norm.NFC.String(s)
	out := make([]byte, 0, len(s))
	for _, r := range s {
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			c = '?'
		}
		out = append(out, c)
	}
	return out
}

// escapeString escapes a byte string for use inside a PDF literal.
// Delimiters get a backslash; control and high bytes are written in octal
// so the content stream stays 7-bit clean.
func escapeString(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		switch {
		case c == '(' || c == ')' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&sb, "\\%03o", c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

var utf16BOM = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// textString encodes s as a hex PDF text string.
func textString(s string) string {
	b, err := utf16BOM.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return "()"
	}
	return fmt.Sprintf("<%X>", b)
}

// pdfDate formats t as a PDF date string in UTC.
func pdfDate(t time.Time) string {
	return "D:" + t.UTC().Format("20060102150405") + "Z"
}

// num formats a coordinate without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
