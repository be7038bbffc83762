package render

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benedoc-inc/pdfer/parser"
	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-cv2pdf/internal/layout"
	"github.com/alnah/go-cv2pdf/internal/theme"
)

var fixedTime = time.Date(2026, 10, 17, 12, 30, 0, 0, time.UTC)

// testDocument returns a two-page document with a sidebar fill on each page.
func testDocument() *layout.Document {
	fill := layout.Fill{Rect: layout.Rect{X: 0, Y: 0, W: 50, H: 100}, Color: theme.DarkBlue}
	return &layout.Document{
		Width:  200,
		Height: 100,
		Pages: []layout.Page{
			{
				Fills: []layout.Fill{fill},
				Lines: []layout.Line{
					{X: 5, Y: 90, Font: theme.HelveticaBold, Size: 18, Color: theme.White, Text: "Jane Doe"},
					{X: 55, Y: 80, Font: theme.Helvetica, Size: 9, Color: theme.TextGray, Text: "Hello (world)"},
				},
			},
			{
				Fills: []layout.Fill{fill},
				Lines: []layout.Line{
					{X: 55, Y: 90, Font: theme.Helvetica, Size: 9, Color: theme.TextGray, Text: "Café à 5 €"},
				},
			},
		},
		Meta: layout.Meta{Title: "Jane Doe - Engineer", Author: "Jane Doe"},
	}
}

func renderPlain(t *testing.T, doc *layout.Document) string {
	t.Helper()
	var buf bytes.Buffer
	r := NewPDF(WithCompression(false), withClock(func() time.Time { return fixedTime }))
	if err := r.Render(context.Background(), doc, &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

// ---------------------------------------------------------------------------
// TestPDF_Render - Document structure
// ---------------------------------------------------------------------------

func TestPDF_Render_Structure(t *testing.T) {
	t.Parallel()

	out := renderPlain(t, testDocument())

	wants := []string{
		"%PDF-1.4",
		"<</Type/Font/Subtype/Type1/BaseFont/Helvetica-Bold/Encoding/WinAnsiEncoding>>",
		"<</Type/Font/Subtype/Type1/BaseFont/Helvetica/Encoding/WinAnsiEncoding>>",
		"/Type/Pages/Kids[",
		"/Count 2>>",
		"/MediaBox[0 0 200 100]",
		"/Type/Catalog/Pages",
		"/CreationDate(D:20261017123000Z)",
		"%%EOF",
	}
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q", w)
		}
	}
	if n := strings.Count(out, "/Type/Page/"); n != 2 {
		t.Errorf("page objects = %d, want 2", n)
	}
}

func TestPDF_Render_TextAndPaintOrder(t *testing.T) {
	t.Parallel()

	out := renderPlain(t, testDocument())

	for _, w := range []string{
		"(Jane Doe) Tj",
		`(Hello \(world\)) Tj`,
		`(Caf\351 \340 5 \200) Tj`,
		"/F1 18.0000 Tf",
		"/F2 9.0000 Tf",
		"1.0000 0.0000 0.0000 1.0000 55.0000 80.0000 Tm",
	} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q", w)
		}
	}

	fill := strings.Index(out, "0.0000 0.0000 50.0000 100.0000 re")
	text := strings.Index(out, "BT\n")
	if fill < 0 || text < 0 || fill > text {
		t.Errorf("sidebar fill (at %d) must be painted before text (at %d)", fill, text)
	}
}

func TestPDF_Render_Info(t *testing.T) {
	t.Parallel()

	out := renderPlain(t, testDocument())

	for _, w := range []string{
		"/Title" + textString("Jane Doe - Engineer"),
		"/Author" + textString("Jane Doe"),
		"/Producer<FEFF",
	} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q", w)
		}
	}
}

func TestPDF_Render_EmptyMetaOmitted(t *testing.T) {
	t.Parallel()

	doc := testDocument()
	doc.Meta = layout.Meta{}
	out := renderPlain(t, doc)

	if strings.Contains(out, "/Title") || strings.Contains(out, "/Author") {
		t.Error("empty metadata should not be written")
	}
}

func TestPDF_Render_ParsesBack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := NewPDF().Render(context.Background(), testDocument(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("/FlateDecode")) {
		t.Error("content streams should be compressed by default")
	}

	pdf, err := parser.Open(buf.Bytes())
	if err != nil {
		t.Fatalf("parser.Open() error = %v", err)
	}
	// 2 fonts, page tree, 2 x (content, page), catalog, info.
	for n := 1; n <= 9; n++ {
		if !pdf.HasObject(n) {
			t.Errorf("object %d missing from cross-reference table", n)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPDF_Render - Errors
// ---------------------------------------------------------------------------

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPDF_Render_Errors(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		doc     *layout.Document
		fail    bool
		wantErr error
	}{
		{name: "nil document", ctx: context.Background(), doc: nil, wantErr: ErrPDFGeneration},
		{name: "no pages", ctx: context.Background(), doc: &layout.Document{Width: 1, Height: 1}, wantErr: ErrPDFGeneration},
		{name: "canceled context", ctx: canceled, doc: testDocument(), wantErr: context.Canceled},
		{name: "write failure", ctx: context.Background(), doc: testDocument(), fail: true, wantErr: ErrWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var err error
			if tt.fail {
				err = NewPDF().Render(tt.ctx, tt.doc, failingWriter{})
			} else {
				err = NewPDF().Render(tt.ctx, tt.doc, &bytes.Buffer{})
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Render() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Text encoding helpers
// ---------------------------------------------------------------------------

func TestEncodeWinAnsi(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"ascii", "abc", []byte("abc")},
		{"latin-1", "é", []byte{0xe9}},
		{"decomposed accent is composed", "e\u0301", []byte{0xe9}},
		{"euro", "€", []byte{0x80}},
		{"bullet", "•", []byte{0x95}},
		{"right quote", "’", []byte{0x92}},
		{"unsupported", "日本", []byte("??")},
		{"empty", "", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, encodeWinAnsi(tt.in)); diff != "" {
				t.Errorf("encodeWinAnsi(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestEscapeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("plain"), "plain"},
		{[]byte(`a(b)c\d`), `a\(b\)c\\d`},
		{[]byte{'\n', '\t'}, `\012\011`},
		{[]byte{0xe9, 0x7f}, `\351\177`},
	}

	for _, tt := range tests {
		if got := escapeString(tt.in); got != tt.want {
			t.Errorf("escapeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextString(t *testing.T) {
	t.Parallel()

	if got, want := textString("Aé"), "<FEFF004100E9>"; got != want {
		t.Errorf("textString = %s, want %s", got, want)
	}
}
