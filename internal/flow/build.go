package flow

import (
	"github.com/alnah/go-cv2pdf/internal/entity"
	"github.com/alnah/go-cv2pdf/internal/table"
	"github.com/alnah/go-cv2pdf/internal/theme"
)

// Section names read by the builder.
const (
	SectionHeader     = "header"
	SectionLanguages  = "langues"
	SectionKeySkills  = "competences_cles"
	SectionInterests  = "centres_interet"
	SectionProfile    = "profil"
	SectionExperience = "experience"
	SectionEducation  = "formation"
	SectionTechSkills = "competences_tech"
)

// Field names read by the builder.
const (
	FieldName        = "nom"
	FieldTitle       = entity.TitleField
	FieldPeriod      = "periode"
	FieldDescription = "description"
	FieldBullet      = "bullet"
)

var (
	contactFields = []string{"email", "telephone", "localisation", "remote"}
	socialFields  = []string{"twitter", "linkedin"}
)

// builder accumulates blocks for one document.
type builder struct {
	doc    *table.Document
	th     *theme.Theme
	blocks []Block
}

// Build produces the full flow for doc: sidebar blocks, one ColumnBreak,
// then main blocks. Sections absent from doc contribute nothing, except the
// contact heading which is always present.
func Build(doc *table.Document, th *theme.Theme) []Block {
	b := &builder{doc: doc, th: th}
	b.sidebar()
	b.blocks = append(b.blocks, ColumnBreak{})
	b.main()
	return b.blocks
}

func (b *builder) text(style, s string) {
	b.blocks = append(b.blocks, Text{Style: style, Text: s})
}

func (b *builder) space(h float64) {
	b.blocks = append(b.blocks, Spacer{Height: h})
}

func (b *builder) bullet(style, s string) {
	b.text(style, b.th.Labels.Bullet+s)
}

// first emits the first record of key in s, if any.
func (b *builder) first(s *table.Section, key, style string) {
	if r, ok := s.First(key); ok {
		b.text(style, r.Content)
	}
}

// ---------------------------------------------------------------------------
// Sidebar
// ---------------------------------------------------------------------------

func (b *builder) sidebar() {
	sp := b.th.Spacing
	lb := b.th.Labels
	header := b.doc.Section(SectionHeader)

	b.space(sp.SidebarTop)
	b.first(header, FieldName, theme.SidebarName)
	b.first(header, FieldTitle, theme.SidebarTitle)
	b.space(sp.AfterHeader)

	b.text(theme.SidebarSection, lb.Contact)
	for _, key := range contactFields {
		b.first(header, key, theme.SidebarText)
	}
	b.space(sp.AfterSidebarPart)

	if header.Has(socialFields[0]) || header.Has(socialFields[1]) {
		b.text(theme.SidebarSection, lb.Social)
		for _, key := range socialFields {
			b.first(header, key, theme.SidebarText)
		}
		b.space(sp.AfterSidebarPart)
	}

	if s, ok := b.doc.Lookup(SectionLanguages); ok {
		b.text(theme.SidebarSection, lb.Languages)
		b.each(s, func(r table.Record) { b.text(theme.SidebarText, r.Content) })
		b.space(sp.AfterSidebarPart)
	}

	if s, ok := b.doc.Lookup(SectionKeySkills); ok {
		b.text(theme.SidebarSection, lb.KeySkills)
		b.each(s, func(r table.Record) {
			b.bullet(theme.SidebarBullet, r.Content)
			b.space(sp.AfterKeySkill)
		})
		b.space(sp.AfterSidebarPart)
	}

	if s, ok := b.doc.Lookup(SectionInterests); ok {
		b.text(theme.SidebarSection, lb.Interests)
		b.each(s, func(r table.Record) { b.text(theme.SidebarText, r.Content) })
	}
}

// each visits every record of s, keys in lexicographic order.
func (b *builder) each(s *table.Section, fn func(table.Record)) {
	for _, key := range s.SortedKeys() {
		for _, r := range s.Records(key) {
			fn(r)
		}
	}
}

// ---------------------------------------------------------------------------
// Main column
// ---------------------------------------------------------------------------

func (b *builder) main() {
	sp := b.th.Spacing
	lb := b.th.Labels

	b.space(sp.MainTop)

	if s, ok := b.doc.Lookup(SectionProfile); ok {
		b.text(theme.MainSection, lb.Profile)
		b.first(s, FieldDescription, theme.MainText)
		b.space(sp.AfterProfile)
	}

	if s, ok := b.doc.Lookup(SectionExperience); ok {
		b.text(theme.MainSection, lb.Experience)
		for _, e := range entity.Ordered(entity.Group(s)) {
			b.entityHeading(e)
			for _, r := range e.FieldsWithPrefix(FieldBullet) {
				b.bullet(theme.MainBullet, r.Content)
			}
			b.space(sp.AfterExperience)
		}
	}

	if s, ok := b.doc.Lookup(SectionEducation); ok {
		b.text(theme.MainSection, lb.Education)
		for _, e := range entity.Ordered(entity.Group(s)) {
			b.entityHeading(e)
			if r, ok := e.First(FieldDescription); ok {
				b.text(theme.MainText, r.Content)
			}
			b.space(sp.AfterEducation)
		}
	}

	if s, ok := b.doc.Lookup(SectionTechSkills); ok {
		b.text(theme.MainSection, lb.TechSkills)
		b.each(s, func(r table.Record) { b.bullet(theme.MainBullet, r.Content) })
		b.space(sp.AfterTechSkills)
	}
}

// entityHeading emits the title and, when present, the period of e.
func (b *builder) entityHeading(e *entity.Entity) {
	if r, ok := e.First(FieldTitle); ok {
		b.text(theme.JobTitle, r.Content)
	}
	if r, ok := e.First(FieldPeriod); ok {
		b.text(theme.CompanyDate, r.Content)
	}
}

// Meta extracts document metadata from the header section.
func Meta(doc *table.Document) (title, author string) {
	header := doc.Section(SectionHeader)
	if r, ok := header.First(FieldName); ok {
		author = r.Content
	}
	if r, ok := header.First(FieldTitle); ok {
		title = r.Content
	}
	switch {
	case author != "" && title != "":
		title = author + " - " + title
	case author != "":
		title = author
	}
	return title, author
}
