// Package entity groups subsection keys of the form "prefix_field" into
// logical entities such as one job or one diploma.
package entity

import (
	"slices"
	"sort"
	"strings"

	"github.com/alnah/go-cv2pdf/internal/table"
)

// keySeparator splits an entity prefix from its field name.
const keySeparator = "_"

// TitleField is the field whose first record names and orders an entity.
const TitleField = "titre"

// Key is a parsed subsection key.
type Key struct {
	Prefix string
	Field  string
}

// ParseKey splits raw at its first underscore. Prefix and field are
// lower-cased so differently-cased spellings address the same entity.
// ok is false for keys without an underscore.
func ParseKey(raw string) (key Key, ok bool) {
	prefix, field, found := strings.Cut(raw, keySeparator)
	if !found {
		return Key{}, false
	}
	return Key{Prefix: strings.ToLower(prefix), Field: strings.ToLower(field)}, true
}

// Entity is a set of records sharing one prefix, keyed by field.
type Entity struct {
	Prefix string
	fields []string
	values map[string][]table.Record
}

func newEntity(prefix string) *Entity {
	return &Entity{Prefix: prefix, values: make(map[string][]table.Record)}
}

// add concatenates recs under field, creating the field on first use.
func (e *Entity) add(field string, recs []table.Record) {
	if _, ok := e.values[field]; !ok {
		e.fields = append(e.fields, field)
	}
	e.values[field] = append(e.values[field], recs...)
}

// Fields returns field names in discovery order.
func (e *Entity) Fields() []string {
	return slices.Clone(e.fields)
}

// Field returns a copy of the records stored under name.
func (e *Entity) Field(name string) []table.Record {
	return slices.Clone(e.values[name])
}

// First returns the first record of a field.
func (e *Entity) First(name string) (table.Record, bool) {
	recs := e.values[name]
	if len(recs) == 0 {
		return table.Record{}, false
	}
	return recs[0], true
}

// FieldsWithPrefix concatenates every field whose name starts with prefix,
// visiting fields in discovery order, then sorts the result by Order.
func (e *Entity) FieldsWithPrefix(prefix string) []table.Record {
	var out []table.Record
	for _, f := range e.fields {
		if strings.HasPrefix(f, prefix) {
			out = append(out, e.values[f]...)
		}
	}
	sortByOrder(out)
	return out
}

// OrderKey returns the Order of the first title record.
// ok is false when the entity has no title.
func (e *Entity) OrderKey() (order int, ok bool) {
	rec, ok := e.First(TitleField)
	if !ok {
		return 0, false
	}
	return rec.Order, true
}

// Groups holds the entities of one section.
type Groups struct {
	prefixes []string
	entities map[string]*Entity
}

// Group collects the prefixed keys of s into entities. Keys without an
// underscore are ignored. Records of raw keys that normalize to the same
// (prefix, field) pair are concatenated in key discovery order and then
// stable-sorted by Order.
func Group(s *table.Section) *Groups {
	g := &Groups{entities: make(map[string]*Entity)}
	for _, raw := range s.Keys() {
		key, ok := ParseKey(raw)
		if !ok {
			continue
		}
		g.getOrCreate(key.Prefix).add(key.Field, s.Records(raw))
	}
	for _, e := range g.entities {
		for _, f := range e.fields {
			sortByOrder(e.values[f])
		}
	}
	return g
}

func (g *Groups) getOrCreate(prefix string) *Entity {
	if e, ok := g.entities[prefix]; ok {
		return e
	}
	e := newEntity(prefix)
	g.entities[prefix] = e
	g.prefixes = append(g.prefixes, prefix)
	return e
}

// Prefixes returns entity prefixes in discovery order.
func (g *Groups) Prefixes() []string {
	return slices.Clone(g.prefixes)
}

// Entity returns the entity for prefix.
func (g *Groups) Entity(prefix string) (*Entity, bool) {
	e, ok := g.entities[prefix]
	return e, ok
}

// Len returns the number of entities, titled or not.
func (g *Groups) Len() int {
	return len(g.prefixes)
}

// Ordered returns the titled entities sorted by OrderKey. Entities without
// a title are left out. Equal keys keep prefix discovery order.
func Ordered(g *Groups) []*Entity {
	type keyed struct {
		order int
		e     *Entity
	}
	var list []keyed
	for _, p := range g.prefixes {
		e := g.entities[p]
		if order, ok := e.OrderKey(); ok {
			list = append(list, keyed{order: order, e: e})
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].order < list[j].order })

	out := make([]*Entity, len(list))
	for i, k := range list {
		out[i] = k.e
	}
	return out
}

func sortByOrder(recs []table.Record) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Order < recs[j].Order })
}
