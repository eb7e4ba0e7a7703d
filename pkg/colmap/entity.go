package colmap

import (
	"strings"

	"github.com/google/uuid"

	"github.com/haivivi/colgraph/pkg/graph"
)

// IDProperty is the vertex property that receives the natural key, unless a
// property mapping of the same name overrides it.
const IDProperty = "id"

// vertexNamespace seeds the name-based vertex ids.
var vertexNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/haivivi/colgraph/vertex"))

// VertexID returns the deterministic vertex id for a concept and natural key.
func VertexID(concept, key string) string {
	return uuid.NewSHA1(vertexNamespace, []byte(concept+"\x00"+key)).String()
}

// PropertyMapping copies one column into a vertex property.
type PropertyMapping struct {
	Name     string
	Column   string
	Required bool
}

// EntityMapping builds one vertex per row from the id column and property
// columns.
type EntityMapping struct {
	key        string
	concept    string
	idColumn   string
	properties []PropertyMapping
}

// NewEntityMapping validates and creates an entity mapping.
func NewEntityMapping(key, concept, idColumn string, props ...PropertyMapping) (*EntityMapping, error) {
	if strings.TrimSpace(key) == "" {
		return nil, invalidf("entity key must be provided")
	}
	if strings.TrimSpace(concept) == "" {
		return nil, invalidf("entity %q: concept must be provided", key)
	}
	if strings.TrimSpace(idColumn) == "" {
		return nil, invalidf("entity %q: id column must be provided", key)
	}
	ps := make([]PropertyMapping, len(props))
	for i, p := range props {
		if strings.TrimSpace(p.Name) == "" {
			return nil, invalidf("entity %q: property %d has no name", key, i)
		}
		if p.Column == "" {
			p.Column = p.Name
		}
		ps[i] = p
	}
	return &EntityMapping{key: key, concept: concept, idColumn: idColumn, properties: ps}, nil
}

// Key returns the entity key relationships refer to.
func (m *EntityMapping) Key() string { return m.key }

// Concept returns the vertex concept.
func (m *EntityMapping) Concept() string { return m.concept }

// IDColumn returns the column holding the natural key.
func (m *EntityMapping) IDColumn() string { return m.idColumn }

// Properties returns the property mappings.
func (m *EntityMapping) Properties() []PropertyMapping {
	return append([]PropertyMapping(nil), m.properties...)
}

// Columns returns every column the mapping reads.
func (m *EntityMapping) Columns() []string {
	cols := []string{m.idColumn}
	for _, p := range m.properties {
		cols = append(cols, p.Column)
	}
	return cols
}

// Extract builds the vertex for row. ok is false when the id cell is blank
// or a required property cell is blank. Cell values are trimmed.
func (m *EntityMapping) Extract(row Row) (*graph.Vertex, bool) {
	id, _ := row.Value(m.idColumn)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	v := &graph.Vertex{
		ID:      VertexID(m.concept, id),
		Concept: m.concept,
		Props:   map[string]string{IDProperty: id},
	}
	for _, p := range m.properties {
		cell, _ := row.Value(p.Column)
		cell = strings.TrimSpace(cell)
		if cell == "" {
			if p.Required {
				return nil, false
			}
			continue
		}
		v.Props[p.Name] = cell
	}
	return v, true
}

// Spec returns the configuration view of the mapping.
func (m *EntityMapping) Spec() EntitySpec {
	s := EntitySpec{Concept: m.concept, ID: m.idColumn}
	for _, p := range m.properties {
		ps := PropertySpec{Name: p.Name, Required: p.Required}
		if p.Column != p.Name {
			ps.Column = p.Column
		}
		s.Properties = append(s.Properties, ps)
	}
	return s
}
