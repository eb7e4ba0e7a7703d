package colmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/haivivi/colgraph/pkg/graph"
)

// ErrInvalidConfiguration is returned when a mapping is built from unusable
// configuration. It is only ever returned at construction time.
var ErrInvalidConfiguration = errors.New("colmap: invalid configuration")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// EntityLookup maps entity keys to the vertices resolved for the current
// row. A nil lookup means no entity was resolved at all.
type EntityLookup map[string]*graph.Vertex

// Get returns the vertex for key. A missing key and a nil vertex are both
// reported as absent.
func (l EntityLookup) Get(key string) (*graph.Vertex, bool) {
	v, ok := l[key]
	return v, ok && v != nil
}

// RelationshipDef describes one edge to create.
type RelationshipDef struct {
	Label  string
	Source *graph.Vertex
	Target *graph.Vertex
}

// Edge converts the definition into a graph edge between vertex ids.
func (d RelationshipDef) Edge() graph.Edge {
	return graph.Edge{Label: d.Label, Source: d.Source.ID, Target: d.Target.ID}
}

// LabelDeriver decides the label of a relationship for one row.
//
// ok == false means no relationship should be created for this row.
// Implementations must not have side effects; an error is passed to the
// caller of DefineRelationship unchanged.
type LabelDeriver interface {
	DeriveLabel(source, target *graph.Vertex, row Row) (label string, ok bool, err error)
}

// LabelDeriverFunc adapts a function to LabelDeriver.
type LabelDeriverFunc func(source, target *graph.Vertex, row Row) (string, bool, error)

func (f LabelDeriverFunc) DeriveLabel(source, target *graph.Vertex, row Row) (string, bool, error) {
	return f(source, target, row)
}

// LabelSpecer is implemented by derivers that can describe themselves as
// configuration.
type LabelSpecer interface {
	Spec() LabelSpec
}

// RelationshipMapping turns two resolved entities into an optional labeled
// edge. It is immutable and safe for concurrent use.
type RelationshipMapping struct {
	sourceKey string
	targetKey string
	deriver   LabelDeriver
}

// NewRelationshipMapping creates a mapping from the entity sourceKey to the
// entity targetKey. Blank keys or a nil deriver are rejected with
// ErrInvalidConfiguration.
func NewRelationshipMapping(sourceKey, targetKey string, d LabelDeriver) (*RelationshipMapping, error) {
	if strings.TrimSpace(sourceKey) == "" {
		return nil, invalidf("source key must be provided")
	}
	if strings.TrimSpace(targetKey) == "" {
		return nil, invalidf("target key must be provided")
	}
	if d == nil {
		return nil, invalidf("label deriver must be provided for %s -> %s", sourceKey, targetKey)
	}
	return &RelationshipMapping{sourceKey: sourceKey, targetKey: targetKey, deriver: d}, nil
}

// SourceKey returns the source entity key as configured.
func (m *RelationshipMapping) SourceKey() string { return m.sourceKey }

// TargetKey returns the target entity key as configured.
func (m *RelationshipMapping) TargetKey() string { return m.targetKey }

// Deriver returns the label deriver.
func (m *RelationshipMapping) Deriver() LabelDeriver { return m.deriver }

// DefineRelationship computes the relationship for one row.
//
// It returns ok == false, with a nil error, when entities is nil, when
// either endpoint is absent, or when the derived label is absent or blank.
// The label is returned exactly as derived.
func (m *RelationshipMapping) DefineRelationship(entities EntityLookup, row Row) (RelationshipDef, bool, error) {
	if entities == nil {
		return RelationshipDef{}, false, nil
	}
	source, ok := entities.Get(m.sourceKey)
	if !ok {
		return RelationshipDef{}, false, nil
	}
	target, ok := entities.Get(m.targetKey)
	if !ok {
		return RelationshipDef{}, false, nil
	}
	label, ok, err := m.deriver.DeriveLabel(source, target, row)
	if err != nil {
		return RelationshipDef{}, false, err
	}
	if !ok || strings.TrimSpace(label) == "" {
		return RelationshipDef{}, false, nil
	}
	return RelationshipDef{Label: label, Source: source, Target: target}, true, nil
}

// Spec returns the configuration view of the mapping. Label is left zero
// when the deriver does not implement LabelSpecer.
func (m *RelationshipMapping) Spec() RelationshipSpec {
	s := RelationshipSpec{Source: m.sourceKey, Target: m.targetKey}
	if ls, ok := m.deriver.(LabelSpecer); ok {
		s.Label = ls.Spec()
	}
	return s
}

// MarshalJSON implements json.Marshaler.
func (m *RelationshipMapping) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Spec())
}

// MarshalYAML implements yaml.Marshaler.
func (m *RelationshipMapping) MarshalYAML() (any, error) {
	return m.Spec(), nil
}

// String renders the mapping as "source -> target".
func (m *RelationshipMapping) String() string {
	return m.sourceKey + " -> " + m.targetKey
}
