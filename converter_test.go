package cv2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-cv2pdf/internal/layout"
	"github.com/alnah/go-cv2pdf/internal/render"
)

// newPlainConverter returns a native converter with uncompressed content
// streams, so tests can search the PDF for text operators.
func newPlainConverter(t *testing.T, opts ...Option) *Converter {
	t.Helper()
	opts = append([]Option{withRenderer(render.NewPDF(render.WithCompression(false)))}, opts...)
	conv, err := NewConverter(opts...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })
	return conv
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	return data
}

// ---------------------------------------------------------------------------
// TestConverter_Convert - End-to-end
// ---------------------------------------------------------------------------

func TestConverter_Convert_EndToEnd(t *testing.T) {
	t.Parallel()

	conv := newPlainConverter(t)
	res, err := conv.Convert(context.Background(), Input{CSV: readFixture(t, "jane_doe.csv")})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if !bytes.HasPrefix(res.PDF, []byte("%PDF-1.4")) {
		t.Errorf("output does not start with a PDF header: %q", res.PDF[:min(len(res.PDF), 16)])
	}
	if res.Pages != 1 {
		t.Errorf("Pages = %d, want 1", res.Pages)
	}
	if res.Title != "Jane Doe - Engineer" || res.Author != "Jane Doe" {
		t.Errorf("metadata = %q / %q, want Jane Doe - Engineer / Jane Doe", res.Title, res.Author)
	}
	if res.Overflowed != 0 {
		t.Errorf("Overflowed = %d, want 0", res.Overflowed)
	}

	out := string(res.PDF)
	for _, w := range []string{
		"(Jane Doe) Tj",
		"(Engineer) Tj",
		"(Senior Dev) Tj",
		"(2020-2022) Tj",
		"Built systems) Tj",
	} {
		if !strings.Contains(out, w) {
			t.Errorf("PDF missing %q", w)
		}
	}
	if n := strings.Count(out, "Built systems) Tj"); n != 1 {
		t.Errorf("bullet rendered %d times, want 1", n)
	}
	// job2 has no titre, so its period is never rendered.
	if strings.Contains(out, "(2022-2023) Tj") {
		t.Error("entity without a title should be absent from the output")
	}
}

func TestConverter_Convert_Paginates(t *testing.T) {
	t.Parallel()

	var csv strings.Builder
	csv.WriteString("section,subsection,type,content,order\n")
	csv.WriteString("header,nom,text,Jane Doe,1\n")
	for i := range 200 {
		fmt.Fprintf(&csv, "competences_tech,skill%d,text,Go and distributed systems,%d\n", i, i)
	}

	conv := newPlainConverter(t)
	res, err := conv.Convert(context.Background(), Input{CSV: []byte(csv.String())})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if res.Pages < 2 {
		t.Fatalf("Pages = %d, want several pages", res.Pages)
	}
	if n := strings.Count(string(res.PDF), "/Type/Page/"); n != res.Pages {
		t.Errorf("page objects = %d, want %d", n, res.Pages)
	}
}

func TestConverter_Convert_CompressedByDefault(t *testing.T) {
	t.Parallel()

	conv, err := NewConverter()
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	defer conv.Close()

	res, err := conv.Convert(context.Background(), Input{CSV: readFixture(t, "jane_doe.csv")})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !bytes.Contains(res.PDF, []byte("/FlateDecode")) {
		t.Error("default converter should compress content streams")
	}
}

// ---------------------------------------------------------------------------
// TestConverter_Convert - Errors
// ---------------------------------------------------------------------------

func TestConverter_Convert_Errors(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	header := "section,subsection,type,content,order\n"

	tests := []struct {
		name    string
		ctx     context.Context
		csv     string
		wantErr []error
	}{
		{"empty input", context.Background(), "", []error{ErrEmptyInput, ErrFormat}},
		{"malformed order", context.Background(), header + "header,nom,text,Jane,abc\n", []error{ErrFormat, ErrInvalidOrder}},
		{"missing column", context.Background(), "section,subsection,type,content\nheader,nom,text,Jane\n", []error{ErrFormat, ErrMissingColumn}},
		{"canceled context", canceled, header + "header,nom,text,Jane,1\n", []error{context.Canceled}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv := newPlainConverter(t)
			res, err := conv.Convert(tt.ctx, Input{CSV: []byte(tt.csv)})
			if res != nil {
				t.Errorf("Convert() result = %+v, want nil on error", res)
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("Convert() error = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestConverter_Convert_FormatErrorDetails(t *testing.T) {
	t.Parallel()

	conv := newPlainConverter(t)
	_, err := conv.Convert(context.Background(), Input{CSV: []byte("section,subsection,type,content,order\nheader,nom,text,Jane,1\nheader,titre,text,Dev,abc\n")})

	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FormatError", err)
	}
	if fe.Line != 3 || fe.Column != "order" || fe.Value != "abc" {
		t.Errorf("FormatError = %+v, want line 3, column order, value abc", fe)
	}
}

type fakeRenderer struct {
	err    error
	panics bool
	closed bool
	got    *layout.Document
}

func (f *fakeRenderer) Render(_ context.Context, doc *layout.Document, w io.Writer) error {
	if f.panics {
		panic("boom")
	}
	f.got = doc
	if f.err != nil {
		return f.err
	}
	_, err := w.Write([]byte("%PDF-fake"))
	return err
}

func (f *fakeRenderer) Close() error {
	f.closed = true
	return nil
}

func TestConverter_Convert_RendererFailures(t *testing.T) {
	t.Parallel()

	csv := readFixture(t, "jane_doe.csv")

	t.Run("error is wrapped", func(t *testing.T) {
		t.Parallel()

		conv, err := NewConverter(withRenderer(&fakeRenderer{err: ErrBrowserConnect}))
		if err != nil {
			t.Fatalf("NewConverter() error = %v", err)
		}
		_, err = conv.Convert(context.Background(), Input{CSV: csv})
		if !errors.Is(err, ErrBrowserConnect) {
			t.Errorf("error = %v, want ErrBrowserConnect", err)
		}
	})

	t.Run("panic is recovered", func(t *testing.T) {
		t.Parallel()

		conv, err := NewConverter(withRenderer(&fakeRenderer{panics: true}))
		if err != nil {
			t.Fatalf("NewConverter() error = %v", err)
		}
		res, err := conv.Convert(context.Background(), Input{CSV: csv})
		if res != nil || !errors.Is(err, ErrConversion) {
			t.Errorf("Convert() = %v, %v; want nil, ErrConversion", res, err)
		}
		if err != nil && !strings.Contains(err.Error(), "boom") {
			t.Errorf("error %q should carry the panic value", err)
		}
	})
}

func TestConverter_Convert_PassesMetadata(t *testing.T) {
	t.Parallel()

	fr := &fakeRenderer{}
	conv, err := NewConverter(withRenderer(fr))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	if _, err := conv.Convert(context.Background(), Input{CSV: readFixture(t, "jane_doe.csv")}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if fr.got.Meta != (layout.Meta{Title: "Jane Doe - Engineer", Author: "Jane Doe"}) {
		t.Errorf("Meta = %+v", fr.got.Meta)
	}
}

// ---------------------------------------------------------------------------
// TestConverter_ConvertFile - File I/O
// ---------------------------------------------------------------------------

func TestConverter_ConvertFile(t *testing.T) {
	t.Parallel()

	conv := newPlainConverter(t)
	dst := filepath.Join(t.TempDir(), "cv.pdf")

	res, err := conv.ConvertFile(context.Background(), filepath.Join("testdata", "jane_doe.csv"), dst)
	if err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.Equal(data, res.PDF) {
		t.Error("written file differs from Result.PDF")
	}
}

func TestConverter_ConvertFile_Errors(t *testing.T) {
	t.Parallel()

	src := filepath.Join("testdata", "jane_doe.csv")

	tests := []struct {
		name    string
		src     string
		dst     string
		wantErr []error
	}{
		{"missing source", filepath.Join(t.TempDir(), "absent.csv"), filepath.Join(t.TempDir(), "out.pdf"), []error{ErrReadInput, fs.ErrNotExist}},
		{"missing output directory", src, filepath.Join(t.TempDir(), "no", "such", "out.pdf"), []error{ErrWriteOutput, fs.ErrNotExist}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv := newPlainConverter(t)
			_, err := conv.ConvertFile(context.Background(), tt.src, tt.dst)
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("ConvertFile() error = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestConverter_ConvertFile_FormatErrorWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "bad.csv")
	dst := filepath.Join(dir, "bad.pdf")
	if err := os.WriteFile(src, []byte("section,subsection,type,content,order\nheader,nom,text,Jane,x\n"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	conv := newPlainConverter(t)
	if _, err := conv.ConvertFile(context.Background(), src, dst); !errors.Is(err, ErrFormat) {
		t.Fatalf("error = %v, want ErrFormat", err)
	}
	if _, err := os.Stat(dst); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("no output should be written on format error, stat = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestNewConverter - Options
// ---------------------------------------------------------------------------

func TestNewConverter_Backends(t *testing.T) {
	t.Parallel()

	tests := []struct {
		backend string
		wantErr error
	}{
		{"", nil},
		{BackendNative, nil},
		{"Native", nil},
		{BackendChrome, nil},
		{"latex", ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			t.Parallel()

			conv, err := NewConverter(WithBackend(tt.backend))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewConverter(%q) error = %v, want %v", tt.backend, err, tt.wantErr)
			}
			if conv != nil {
				// No browser is started before the first conversion.
				if err := conv.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}
		})
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Duration{0, -time.Second} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("WithTimeout(%v) should panic", d)
				}
			}()
			WithTimeout(d)
		}()
	}
}

func TestWithLogger_StageTimings(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	conv := newPlainConverter(t, WithLogger(zap.New(core)))

	if _, err := conv.Convert(context.Background(), Input{CSV: readFixture(t, "jane_doe.csv")}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	for _, msg := range []string{"parsed table", "built flow", "laid out document", "rendered PDF"} {
		if logs.FilterMessage(msg).Len() != 1 {
			t.Errorf("expected one %q entry, got %d", msg, logs.FilterMessage(msg).Len())
		}
	}
}

func TestConverter_Close(t *testing.T) {
	t.Parallel()

	fr := &fakeRenderer{}
	conv, err := NewConverter(withRenderer(fr))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	if err := conv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !fr.closed {
		t.Error("Close() should close the renderer")
	}
}
