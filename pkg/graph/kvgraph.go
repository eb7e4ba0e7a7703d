package graph

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/colgraph/pkg/kv"
)

// KV key layout (relative to the configured prefix):
//
//	{prefix}:v:{id}                      → msgpack-encoded Vertex
//	{prefix}:c:{concept}:{id}            → empty (concept index)
//	{prefix}:o:{source}:{label}:{target} → empty (outgoing index)
//	{prefix}:i:{target}:{label}:{source} → empty (incoming index)

// KVGraph is a Graph backed by a kv.Store. All keys live under a prefix so
// several graphs can share one store.
type KVGraph struct {
	store  kv.Store
	prefix kv.Key

	// mu serializes vertex writes, which read the old concept first.
	mu sync.Mutex
}

// NewKVGraph creates a KVGraph using store with all keys under prefix.
func NewKVGraph(store kv.Store, prefix kv.Key) *KVGraph {
	return &KVGraph{store: store, prefix: prefix}
}

var _ Graph = (*KVGraph)(nil)

func (g *KVGraph) key(segs ...string) kv.Key {
	return g.prefix.Append(segs...)
}

func (g *KVGraph) edgeKeys(e Edge) []kv.Key {
	return []kv.Key{
		g.key("o", e.Source, e.Label, e.Target),
		g.key("i", e.Target, e.Label, e.Source),
	}
}

func validateEdge(e Edge) error {
	if e.Label == "" || e.Source == "" || e.Target == "" {
		return fmt.Errorf("%w: edge %q -[%s]-> %q", ErrInvalid, e.Source, e.Label, e.Target)
	}
	return nil
}

// --- Vertex operations ---

func (g *KVGraph) GetVertex(ctx context.Context, id string) (*Vertex, error) {
	data, err := g.store.Get(ctx, g.key("v", id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, fmt.Errorf("%w: vertex %q", ErrNotFound, id)
		}
		return nil, err
	}
	v := &Vertex{}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("graph: decode vertex %q: %w", id, err)
	}
	v.ID = id
	return v, nil
}

func (g *KVGraph) PutVertex(ctx context.Context, v Vertex) error {
	if v.ID == "" || v.Concept == "" {
		return fmt.Errorf("%w: vertex needs id and concept", ErrInvalid)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	old, err := g.GetVertex(ctx, v.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return g.write(ctx, old, v)
}

func (g *KVGraph) MergeVertex(ctx context.Context, v Vertex) error {
	if v.ID == "" || v.Concept == "" {
		return fmt.Errorf("%w: vertex needs id and concept", ErrInvalid)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	old, err := g.GetVertex(ctx, v.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if old != nil && len(old.Props) > 0 {
		props := maps.Clone(old.Props)
		maps.Copy(props, v.Props)
		v.Props = props
	}
	return g.write(ctx, old, v)
}

// write stores v, moving its concept index entry away from old's concept.
func (g *KVGraph) write(ctx context.Context, old *Vertex, v Vertex) error {
	data, err := msgpack.Marshal(&v)
	if err != nil {
		return err
	}
	if old != nil && old.Concept != v.Concept {
		if err := g.store.BatchDelete(ctx, []kv.Key{g.key("c", old.Concept, v.ID)}); err != nil {
			return err
		}
	}
	return g.store.BatchSet(ctx, []kv.Entry{
		{Key: g.key("v", v.ID), Value: data},
		{Key: g.key("c", v.Concept, v.ID)},
	})
}

func (g *KVGraph) DeleteVertex(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := g.GetVertex(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	edges, err := g.Edges(ctx, id)
	if err != nil {
		return err
	}
	keys := make([]kv.Key, 0, 2+2*len(edges))
	keys = append(keys, g.key("v", id), g.key("c", v.Concept, id))
	for _, e := range edges {
		keys = append(keys, g.edgeKeys(e)...)
	}
	return g.store.BatchDelete(ctx, keys)
}

func (g *KVGraph) ListVertices(ctx context.Context, concept string) iter.Seq2[Vertex, error] {
	if concept == "" {
		return g.listAllVertices(ctx)
	}
	return func(yield func(Vertex, error) bool) {
		plen := len(g.prefix)
		for entry, err := range g.store.List(ctx, g.key("c", concept)) {
			if err != nil {
				yield(Vertex{}, err)
				return
			}
			if len(entry.Key) != plen+3 {
				continue
			}
			v, err := g.GetVertex(ctx, entry.Key[plen+2])
			if errors.Is(err, ErrNotFound) {
				continue // index entry raced with a delete
			}
			if err != nil {
				if !yield(Vertex{}, err) {
					return
				}
				continue
			}
			if !yield(*v, nil) {
				return
			}
		}
	}
}

func (g *KVGraph) listAllVertices(ctx context.Context) iter.Seq2[Vertex, error] {
	return func(yield func(Vertex, error) bool) {
		plen := len(g.prefix)
		for entry, err := range g.store.List(ctx, g.key("v")) {
			if err != nil {
				yield(Vertex{}, err)
				return
			}
			if len(entry.Key) != plen+2 {
				continue
			}
			var v Vertex
			if err := msgpack.Unmarshal(entry.Value, &v); err != nil {
				if !yield(Vertex{}, fmt.Errorf("graph: decode vertex %q: %w", entry.Key[plen+1], err)) {
					return
				}
				continue
			}
			v.ID = entry.Key[plen+1]
			if !yield(v, nil) {
				return
			}
		}
	}
}

// --- Edge operations ---

func (g *KVGraph) AddEdge(ctx context.Context, e Edge) error {
	if err := validateEdge(e); err != nil {
		return err
	}
	keys := g.edgeKeys(e)
	return g.store.BatchSet(ctx, []kv.Entry{{Key: keys[0]}, {Key: keys[1]}})
}

func (g *KVGraph) RemoveEdge(ctx context.Context, e Edge) error {
	if err := validateEdge(e); err != nil {
		return err
	}
	return g.store.BatchDelete(ctx, g.edgeKeys(e))
}

func (g *KVGraph) Edges(ctx context.Context, id string) ([]Edge, error) {
	var edges []Edge
	plen := len(g.prefix)

	for entry, err := range g.store.List(ctx, g.key("o", id)) {
		if err != nil {
			return nil, err
		}
		k := entry.Key
		if len(k) != plen+4 {
			continue
		}
		edges = append(edges, Edge{Source: k[plen+1], Label: k[plen+2], Target: k[plen+3]})
	}

	for entry, err := range g.store.List(ctx, g.key("i", id)) {
		if err != nil {
			return nil, err
		}
		k := entry.Key
		if len(k) != plen+4 {
			continue
		}
		// Self-loops were already found by the outgoing scan.
		if k[plen+3] == id {
			continue
		}
		edges = append(edges, Edge{Source: k[plen+3], Label: k[plen+2], Target: k[plen+1]})
	}
	return edges, nil
}

func (g *KVGraph) ListEdges(ctx context.Context) iter.Seq2[Edge, error] {
	return func(yield func(Edge, error) bool) {
		plen := len(g.prefix)
		for entry, err := range g.store.List(ctx, g.key("o")) {
			if err != nil {
				yield(Edge{}, err)
				return
			}
			k := entry.Key
			if len(k) != plen+4 {
				continue
			}
			if !yield(Edge{Source: k[plen+1], Label: k[plen+2], Target: k[plen+3]}, nil) {
				return
			}
		}
	}
}

// --- Traversal ---

func (g *KVGraph) Neighbors(ctx context.Context, id string, labels ...string) ([]string, error) {
	edges, err := g.Edges(ctx, id)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, e := range edges {
		if len(labels) > 0 && !slices.Contains(labels, e.Label) {
			continue
		}
		other := e.Target
		if other == id {
			other = e.Source
		}
		seen[other] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	slices.Sort(out)
	return out, nil
}
