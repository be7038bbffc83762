// Package table parses the résumé CSV into a typed section/subsection model.
package table

import (
	"slices"
	"sort"
)

// Record is one content row of the input table.
type Record struct {
	Section    string
	Subsection string
	Type       string
	Content    string
	Order      int
	Line       int // 1-based line in the source, 0 when built in code
}

// Section maps subsection keys to their records.
// Keys remember the order in which they were first seen.
type Section struct {
	Name    string
	keys    []string
	records map[string][]Record
}

func newSection(name string) *Section {
	return &Section{Name: name, records: make(map[string][]Record)}
}

// Keys returns subsection keys in discovery order.
func (s *Section) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.keys)
}

// SortedKeys returns subsection keys in lexicographic order.
func (s *Section) SortedKeys() []string {
	keys := s.Keys()
	sort.Strings(keys)
	return keys
}

// Records returns a copy of the records stored under key, sorted by Order.
func (s *Section) Records(key string) []Record {
	if s == nil {
		return nil
	}
	return slices.Clone(s.records[key])
}

// First returns the first record under key.
func (s *Section) First(key string) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	recs := s.records[key]
	if len(recs) == 0 {
		return Record{}, false
	}
	return recs[0], true
}

// Has reports whether key holds at least one record.
func (s *Section) Has(key string) bool {
	_, ok := s.First(key)
	return ok
}

// Len returns the number of subsection keys.
func (s *Section) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// append adds r under its subsection key, creating the key on first use.
func (s *Section) append(r Record) {
	if _, ok := s.records[r.Subsection]; !ok {
		s.keys = append(s.keys, r.Subsection)
	}
	s.records[r.Subsection] = append(s.records[r.Subsection], r)
}

func (s *Section) sortRecords() {
	for _, recs := range s.records {
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Order < recs[j].Order })
	}
}

// Document is the parsed input: section name to Section.
// It is built once by Parse or NewDocument and is read-only afterwards.
type Document struct {
	order    []string
	sections map[string]*Section
}

// NewDocument builds a Document from records already in memory.
// Records are grouped and sorted exactly as Parse does.
func NewDocument(records []Record) *Document {
	d := &Document{sections: make(map[string]*Section)}
	for _, r := range records {
		d.getOrCreate(r.Section).append(r)
	}
	for _, s := range d.sections {
		s.sortRecords()
	}
	return d
}

// getOrCreate returns the named section, creating an empty one when absent.
func (d *Document) getOrCreate(name string) *Section {
	if s, ok := d.sections[name]; ok {
		return s
	}
	s := newSection(name)
	d.sections[name] = s
	d.order = append(d.order, name)
	return s
}

// Section returns the named section or nil when absent.
// Section methods accept a nil receiver and behave as for an empty section.
func (d *Document) Section(name string) *Section {
	s, _ := d.Lookup(name)
	return s
}

// Lookup returns the named section and whether it exists.
func (d *Document) Lookup(name string) (*Section, bool) {
	if d == nil {
		return nil, false
	}
	s, ok := d.sections[name]
	return s, ok
}

// Names returns section names in discovery order.
func (d *Document) Names() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.order)
}

// Len returns the number of sections.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}
