// Package theme holds the page geometry, style vocabulary, spacing and labels
// shared by the document builder and the layout engine.
package theme

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Length units in PDF points.
const (
	Point = 1.0
	Inch  = 72.0
	Cm    = Inch / 2.54
	Mm    = Cm / 10
)

// A4 page size in points.
const (
	A4Width  = 210 * Mm
	A4Height = 297 * Mm
)

// Style names of the fixed vocabulary.
const (
	SidebarName    = "SidebarName"
	SidebarTitle   = "SidebarTitle"
	SidebarSection = "SidebarSection"
	SidebarText    = "SidebarText"
	SidebarBullet  = "SidebarBullet"
	MainSection    = "MainSection"
	JobTitle       = "JobTitle"
	CompanyDate    = "CompanyDate"
	MainText       = "MainText"
	MainBullet     = "MainBullet"
)

// Base fonts (PDF Standard 14).
const (
	Helvetica        = "Helvetica"
	HelveticaBold    = "Helvetica-Bold"
	HelveticaOblique = "Helvetica-Oblique"
)

// Sentinel errors for theme validation.
var (
	ErrInvalidColor = errors.New("invalid color")
	ErrInvalidTheme = errors.New("invalid theme")
)

// Align is the horizontal alignment of a text line within its region.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Color is an 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

// Common colors.
var (
	White     = Color{0xff, 0xff, 0xff}
	DarkBlue  = Color{0x1e, 0x3a, 0x5f}
	TextGray  = Color{0x33, 0x33, 0x33}
	Cloud     = Color{0xec, 0xf0, 0xf1}
	MutedGray = Color{0x66, 0x66, 0x66}
)

// ParseColor parses "#rrggbb" or "#rgb".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGB returns the components scaled to [0, 1].
func (c Color) RGB() (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// Style describes how a text block is set.
type Style struct {
	Font        string
	Size        float64
	Leading     float64
	Color       Color
	Align       Align
	LeftIndent  float64
	RightIndent float64
	SpaceBefore float64
	SpaceAfter  float64
}

// Frame is a vertical column of the page template. Content is placed
// inside the frame minus its padding.
type Frame struct {
	X       float64
	Width   float64
	Padding Padding
}

// Padding is the inner spacing of a frame.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// Uniform returns the same padding on all four sides.
func Uniform(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// Spacing holds the fixed vertical gaps emitted between content groups.
type Spacing struct {
	SidebarTop       float64 // before the name
	AfterHeader      float64 // after name and title
	AfterSidebarPart float64 // after contact, social, languages and key skills
	AfterKeySkill    float64 // after each key skill bullet
	MainTop          float64 // before the profile
	AfterProfile     float64
	AfterExperience  float64 // after each job
	AfterEducation   float64 // after each diploma
	AfterTechSkills  float64
}

// Labels are the fixed headings and prefixes printed around content.
type Labels struct {
	Contact    string
	Social     string
	Languages  string
	KeySkills  string
	Interests  string
	Profile    string
	Experience string
	Education  string
	TechSkills string
	Bullet     string
}

// Theme is the complete set of presentation parameters.
type Theme struct {
	PageWidth   float64
	PageHeight  float64
	Sidebar     Frame
	Main        Frame
	SidebarFill Color
	Styles      map[string]Style
	Spacing     Spacing
	Labels      Labels
}

// Default returns the standard two-column A4 résumé theme.
func Default() *Theme {
	sidebarWidth := 7 * Cm
	return &Theme{
		PageWidth:  A4Width,
		PageHeight: A4Height,
		Sidebar: Frame{
			X:       0,
			Width:   sidebarWidth,
			Padding: Uniform(10),
		},
		Main: Frame{
			X:       sidebarWidth,
			Width:   A4Width - sidebarWidth,
			Padding: Uniform(1.5 * Cm),
		},
		SidebarFill: DarkBlue,
		Styles:      defaultStyles(),
		Spacing: Spacing{
			SidebarTop:       1 * Cm,
			AfterHeader:      0.5 * Cm,
			AfterSidebarPart: 0.3 * Cm,
			AfterKeySkill:    0.2 * Cm,
			MainTop:          0.5 * Cm,
			AfterProfile:     0.3 * Cm,
			AfterExperience:  0.2 * Cm,
			AfterEducation:   0.15 * Cm,
			AfterTechSkills:  0.2 * Cm,
		},
		Labels: Labels{
			Contact:    "Contact",
			Social:     "Réseaux sociaux",
			Languages:  "Langues",
			KeySkills:  "Compétences clés",
			Interests:  "Centres d'intérêt",
			Profile:    "PROFIL",
			Experience: "EXPÉRIENCES PROFESSIONNELLES",
			Education:  "DIPLÔMES ET FORMATIONS",
			TechSkills: "COMPÉTENCES TECHNIQUES",
			Bullet:     "• ",
		},
	}
}

func defaultStyles() map[string]Style {
	return map[string]Style{
		SidebarName: {
			Font: HelveticaBold, Size: 18, Leading: 22, Color: White,
			Align: AlignCenter, SpaceAfter: 4,
		},
		SidebarTitle: {
			Font: Helvetica, Size: 13, Leading: 16, Color: Cloud,
			Align: AlignCenter, SpaceAfter: 12,
		},
		SidebarSection: {
			Font: HelveticaBold, Size: 11, Leading: 13, Color: White,
			LeftIndent: 5, SpaceBefore: 10, SpaceAfter: 6,
		},
		SidebarText: {
			Font: Helvetica, Size: 9, Leading: 11, Color: Cloud,
			LeftIndent: 5, SpaceAfter: 4,
		},
		SidebarBullet: {
			Font: Helvetica, Size: 9, Leading: 11, Color: Cloud,
			LeftIndent: 10, SpaceAfter: 3,
		},
		MainSection: {
			Font: HelveticaBold, Size: 13, Leading: 18, Color: DarkBlue,
			SpaceBefore: 10, SpaceAfter: 6,
		},
		JobTitle: {
			Font: HelveticaBold, Size: 10.5, Leading: 12, Color: DarkBlue,
			SpaceBefore: 5, SpaceAfter: 2,
		},
		CompanyDate: {
			Font: HelveticaOblique, Size: 9, Leading: 12, Color: MutedGray,
			SpaceAfter: 3,
		},
		MainText: {
			Font: Helvetica, Size: 9, Leading: 11, Color: TextGray,
			SpaceAfter: 3,
		},
		MainBullet: {
			Font: Helvetica, Size: 9, Leading: 11, Color: TextGray,
			LeftIndent: 12, SpaceAfter: 2,
		},
	}
}

// Style returns the named style.
func (t *Theme) Style(name string) (Style, bool) {
	s, ok := t.Styles[name]
	return s, ok
}

// Validate checks that the geometry leaves room for content and that
// every style of the vocabulary is defined.
func (t *Theme) Validate() error {
	if t.PageWidth <= 0 || t.PageHeight <= 0 {
		return fmt.Errorf("%w: page size %.2fx%.2f", ErrInvalidTheme, t.PageWidth, t.PageHeight)
	}
	for name, f := range map[string]Frame{"sidebar": t.Sidebar, "main": t.Main} {
		if f.Width-f.Padding.Left-f.Padding.Right <= 0 {
			return fmt.Errorf("%w: %s frame has no usable width", ErrInvalidTheme, name)
		}
		if t.PageHeight-f.Padding.Top-f.Padding.Bottom <= 0 {
			return fmt.Errorf("%w: %s frame has no usable height", ErrInvalidTheme, name)
		}
		if f.X < 0 || f.X+f.Width > t.PageWidth+0.01 {
			return fmt.Errorf("%w: %s frame exceeds page width", ErrInvalidTheme, name)
		}
	}
	for _, name := range StyleNames() {
		s, ok := t.Styles[name]
		if !ok {
			return fmt.Errorf("%w: style %s not defined", ErrInvalidTheme, name)
		}
		if s.Size <= 0 || s.Leading <= 0 || s.Font == "" {
			return fmt.Errorf("%w: style %s needs a font, size and leading", ErrInvalidTheme, name)
		}
	}
	return nil
}

// StyleNames returns the style vocabulary in a fixed order.
func StyleNames() []string {
	return []string{
		SidebarName, SidebarTitle, SidebarSection, SidebarText, SidebarBullet,
		MainSection, JobTitle, CompanyDate, MainText, MainBullet,
	}
}
