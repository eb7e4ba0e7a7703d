// Package graph provides the property graph that column mappings are
// ingested into. Vertices are identified by a unique id, carry a concept
// (their type) and string properties. Edges are labeled and directed, and
// stored with forward and reverse indexes for traversal in both directions.
package graph

import (
	"context"
	"errors"
	"iter"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a vertex does not exist.
	ErrNotFound = errors.New("graph: not found")

	// ErrInvalid is returned when a vertex or edge is missing a required
	// field (id, concept, label, endpoint).
	ErrInvalid = errors.New("graph: invalid element")
)

// Vertex is a node in the graph.
type Vertex struct {
	ID      string            `json:"id" yaml:"id" msgpack:"-"`
	Concept string            `json:"concept" yaml:"concept" msgpack:"c"`
	Props   map[string]string `json:"props,omitempty" yaml:"props,omitempty" msgpack:"p,omitempty"`
}

// Prop returns the named property, or "" when unset.
func (v *Vertex) Prop(name string) string {
	if v == nil {
		return ""
	}
	return v.Props[name]
}

// Edge is a labeled, directed connection between two vertices.
type Edge struct {
	Label  string `json:"label" yaml:"label"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Graph is the interface for a labeled property graph.
type Graph interface {
	// GetVertex retrieves a vertex by id. Returns ErrNotFound if not present.
	GetVertex(ctx context.Context, id string) (*Vertex, error)

	// PutVertex creates or overwrites a vertex.
	PutVertex(ctx context.Context, v Vertex) error

	// MergeVertex creates a vertex or updates an existing one: the concept
	// is replaced and v's properties are added over the stored ones.
	MergeVertex(ctx context.Context, v Vertex) error

	// DeleteVertex removes a vertex and every edge touching it.
	DeleteVertex(ctx context.Context, id string) error

	// ListVertices iterates over vertices of the given concept, or over all
	// vertices when concept is "".
	ListVertices(ctx context.Context, concept string) iter.Seq2[Vertex, error]

	// AddEdge creates a directed edge. Adding an existing edge is a no-op.
	AddEdge(ctx context.Context, e Edge) error

	// RemoveEdge removes an edge. No error if it does not exist.
	RemoveEdge(ctx context.Context, e Edge) error

	// Edges returns every edge where id is the source or the target.
	Edges(ctx context.Context, id string) ([]Edge, error)

	// ListEdges iterates over all edges ordered by source id.
	ListEdges(ctx context.Context) iter.Seq2[Edge, error]

	// Neighbors returns the sorted ids of vertices adjacent to id in either
	// direction. When labels is non-empty only edges with those labels count.
	Neighbors(ctx context.Context, id string, labels ...string) ([]string, error)
}
