package layout

import (
	"strings"
	"sync"

	"github.com/tsawler/tabula/font"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Measurer returns the advance width of text set in a font, in points.
type Measurer interface {
	Width(text, fontName string, size float64) float64
}

// Compile-time interface implementation check.
var _ Measurer = (*FontMetrics)(nil)

// FontMetrics measures text with the Standard 14 width tables.
// It is safe for concurrent use.
type FontMetrics struct {
	mu    sync.Mutex
	fonts map[string]*font.Font
}

// NewFontMetrics returns an empty metrics cache.
func NewFontMetrics() *FontMetrics {
	return &FontMetrics{fonts: make(map[string]*font.Font)}
}

// Width implements Measurer.
func (m *FontMetrics) Width(text, fontName string, size float64) float64 {
	f := m.font(fontName)
	high := highWidths(fontName)
	var units float64
	for _, r := range norm.NFC.String(text) {
		units += glyphWidth(f, high, r)
	}
	return units * size / 1000
}

func (m *FontMetrics) font(name string) *font.Font {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fonts == nil {
		m.fonts = make(map[string]*font.Font)
	}
	f, ok := m.fonts[name]
	if !ok {
		f = font.NewFont(name, name, "Type1")
		m.fonts[name] = f
	}
	return f
}

// highWidths picks the upper-half table for a Standard 14 font. Times
// falls back to the Helvetica tables; the theme never selects it.
func highWidths(fontName string) *[128]uint16 {
	switch {
	case strings.HasPrefix(fontName, "Courier"):
		return &courierHigh
	case strings.Contains(fontName, "Bold"):
		return &helveticaBoldHigh
	default:
		return &helveticaHigh
	}
}

// glyphWidth measures the glyph the renderer draws for r: its WinAnsi
// byte, or '?' when r has none.
func glyphWidth(f *font.Font, high *[128]uint16, r rune) float64 {
	c, ok := charmap.Windows1252.EncodeRune(r)
	if !ok {
		c = '?'
	}
	if c < 0x80 {
		return f.GetWidth(rune(c))
	}
	if w := high[c-0x80]; w != 0 {
		return float64(w)
	}
	return f.GetWidth('?')
}
