package colmap

import (
	"slices"
	"strings"
	"sync"
)

// LabelBuilder builds a label deriver from its configuration.
type LabelBuilder func(spec LabelSpec) (LabelDeriver, error)

// LabelRegistry maps label kinds to builders. Custom derivers are plugged
// in by registering a kind and referring to it from the document.
type LabelRegistry struct {
	mu       sync.RWMutex
	builders map[string]LabelBuilder
}

// NewLabelRegistry creates a registry with the built-in kinds registered.
func NewLabelRegistry() *LabelRegistry {
	r := &LabelRegistry{builders: make(map[string]LabelBuilder)}
	r.Register(KindConstant, buildConstant)
	r.Register(KindColumn, buildColumn)
	r.Register(KindExpr, buildExpr)
	return r
}

// Register adds or replaces the builder for kind.
func (r *LabelRegistry) Register(kind string, b LabelBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[kind] = b
}

// Kinds returns the registered kinds, sorted.
func (r *LabelRegistry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.builders))
	for k := range r.builders {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Build creates the deriver for spec. An empty kind means constant.
func (r *LabelRegistry) Build(spec LabelSpec) (LabelDeriver, error) {
	kind := spec.Kind
	if kind == "" {
		kind = KindConstant
	}
	r.mu.RLock()
	b, ok := r.builders[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, invalidf("unknown label kind %q (known: %s)", kind, strings.Join(r.Kinds(), ", "))
	}
	d, err := b(spec)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, invalidf("label kind %q built no deriver", kind)
	}
	return d, nil
}

func buildConstant(spec LabelSpec) (LabelDeriver, error) {
	if strings.TrimSpace(spec.Value) == "" {
		return nil, invalidf("constant label must have a value")
	}
	return ConstantLabel{Label: spec.Value}, nil
}

func buildColumn(spec LabelSpec) (LabelDeriver, error) {
	if strings.TrimSpace(spec.Column) == "" {
		return nil, invalidf("column label must name a column")
	}
	return ColumnLabel{Column: spec.Column, Values: spec.Values, Default: spec.Default}, nil
}

func buildExpr(spec LabelSpec) (LabelDeriver, error) {
	return NewExprLabel(spec.Expr)
}
