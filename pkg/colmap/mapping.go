package colmap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseDocument decodes and validates a YAML mapping document. Syntax and
// schema violations are reported as ErrInvalidConfiguration.
func ParseDocument(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse document: %w", ErrInvalidConfiguration, err)
	}
	if raw == nil {
		return nil, invalidf("empty document")
	}
	if err := validateInstance(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decode document: %w", ErrInvalidConfiguration, err)
	}
	return &doc, nil
}

// Load parses and compiles a YAML mapping document. A nil registry means
// NewLabelRegistry().
func Load(data []byte, labels *LabelRegistry) (*Mapping, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return Compile(doc, labels)
}

// Mapping is a compiled column mapping document. It owns the entity and
// relationship mappings for its lifetime and is safe for concurrent use.
type Mapping struct {
	name          string
	skipRows      int
	header        bool
	columns       []string
	entities      []*EntityMapping
	relationships []*RelationshipMapping
}

// Compile validates doc and builds its mappings. Every problem is reported
// as ErrInvalidConfiguration; nothing is registered from a bad document.
func Compile(doc *Document, labels *LabelRegistry) (*Mapping, error) {
	if doc == nil {
		return nil, invalidf("nil document")
	}
	if labels == nil {
		labels = NewLabelRegistry()
	}
	if doc.SkipRows < 0 {
		return nil, invalidf("skipRows must not be negative")
	}
	if doc.Header && len(doc.Columns) > 0 {
		return nil, invalidf("header and columns are mutually exclusive")
	}
	if len(doc.Entities) == 0 {
		return nil, invalidf("document defines no entities")
	}

	m := &Mapping{
		name:     doc.Name,
		skipRows: doc.SkipRows,
		header:   doc.Header,
		columns:  slices.Clone(doc.Columns),
	}

	keys := make([]string, 0, len(doc.Entities))
	for k := range doc.Entities {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		spec := doc.Entities[k]
		props := make([]PropertyMapping, len(spec.Properties))
		for i, p := range spec.Properties {
			props[i] = PropertyMapping{Name: p.Name, Column: p.Column, Required: p.Required}
		}
		em, err := NewEntityMapping(k, spec.Concept, spec.ID, props...)
		if err != nil {
			return nil, err
		}
		m.entities = append(m.entities, em)
	}

	for i, rs := range doc.Relationships {
		d, err := labels.Build(rs.Label)
		if err != nil {
			return nil, fmt.Errorf("relationship %d: %w", i, err)
		}
		rm, err := NewRelationshipMapping(rs.Source, rs.Target, d)
		if err != nil {
			return nil, fmt.Errorf("relationship %d: %w", i, err)
		}
		for _, key := range []string{rs.Source, rs.Target} {
			if _, ok := doc.Entities[key]; !ok {
				return nil, fmt.Errorf("relationship %d: %w", i, invalidf("undefined entity %q", key))
			}
		}
		m.relationships = append(m.relationships, rm)
	}

	if len(m.columns) > 0 {
		if err := m.CheckColumns(NewHeader(m.columns)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Name returns the document name.
func (m *Mapping) Name() string { return m.name }

// SkipRows returns how many leading records to ignore.
func (m *Mapping) SkipRows() int { return m.skipRows }

// HasHeader reports whether the first record after SkipRows is a header.
func (m *Mapping) HasHeader() bool { return m.header }

// Columns returns the explicit column names, if any.
func (m *Mapping) Columns() []string { return slices.Clone(m.columns) }

// EntityMappings returns the entity mappings sorted by key.
func (m *Mapping) EntityMappings() []*EntityMapping { return slices.Clone(m.entities) }

// RelationshipMappings returns the relationship mappings in document order.
func (m *Mapping) RelationshipMappings() []*RelationshipMapping {
	return slices.Clone(m.relationships)
}

// CheckColumns reports every column the mapping reads that h cannot resolve.
func (m *Mapping) CheckColumns(h *Header) error {
	var missing []string
	check := func(col string) {
		if !h.Has(col) && !slices.Contains(missing, col) {
			missing = append(missing, col)
		}
	}
	for _, em := range m.entities {
		for _, c := range em.Columns() {
			check(c)
		}
	}
	for _, rm := range m.relationships {
		if cl, ok := rm.deriver.(ColumnLabel); ok {
			check(cl.Column)
		}
	}
	if len(missing) > 0 {
		return invalidf("unknown columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Entities extracts every entity of row. It returns nil when the row
// produced no entity at all.
func (m *Mapping) Entities(row Row) EntityLookup {
	var lookup EntityLookup
	for _, em := range m.entities {
		v, ok := em.Extract(row)
		if !ok {
			continue
		}
		if lookup == nil {
			lookup = make(EntityLookup, len(m.entities))
		}
		lookup[em.key] = v
	}
	return lookup
}

// Relationships runs every relationship mapping against one row, in
// document order. skipped counts mappings that produced nothing. The first
// deriver error stops evaluation and is returned unchanged.
func (m *Mapping) Relationships(entities EntityLookup, row Row) (defs []RelationshipDef, skipped int, err error) {
	for _, rm := range m.relationships {
		def, ok, err := rm.DefineRelationship(entities, row)
		if err != nil {
			return defs, skipped, err
		}
		if !ok {
			skipped++
			continue
		}
		defs = append(defs, def)
	}
	return defs, skipped, nil
}

// Document returns the configuration view of the compiled mapping.
func (m *Mapping) Document() *Document {
	doc := &Document{
		Name:     m.name,
		SkipRows: m.skipRows,
		Header:   m.header,
		Columns:  slices.Clone(m.columns),
		Entities: make(map[string]EntitySpec, len(m.entities)),
	}
	for _, em := range m.entities {
		doc.Entities[em.key] = em.Spec()
	}
	for _, rm := range m.relationships {
		doc.Relationships = append(doc.Relationships, rm.Spec())
	}
	return doc
}

// MarshalYAML implements yaml.Marshaler.
func (m *Mapping) MarshalYAML() (any, error) {
	return m.Document(), nil
}
