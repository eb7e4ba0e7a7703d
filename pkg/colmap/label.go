package colmap

import (
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/haivivi/colgraph/pkg/graph"
)

// ConstantLabel labels every relationship with the same string.
type ConstantLabel struct {
	Label string
}

func (c ConstantLabel) DeriveLabel(_, _ *graph.Vertex, _ Row) (string, bool, error) {
	return c.Label, c.Label != "", nil
}

func (c ConstantLabel) Spec() LabelSpec {
	return LabelSpec{Kind: KindConstant, Value: c.Label}
}

// ColumnLabel derives the label from a cell of the current row.
//
// With an empty Values table the raw cell is the label. Otherwise the
// trimmed cell is translated through Values. Default is used for blank or
// missing cells and for cells that Values does not know.
type ColumnLabel struct {
	Column  string
	Values  map[string]string
	Default string
}

func (c ColumnLabel) DeriveLabel(_, _ *graph.Vertex, row Row) (string, bool, error) {
	cell, ok := row.Value(c.Column)
	if !ok || strings.TrimSpace(cell) == "" {
		return c.Default, c.Default != "", nil
	}
	if len(c.Values) == 0 {
		return cell, true, nil
	}
	if label, ok := c.Values[strings.TrimSpace(cell)]; ok {
		return label, true, nil
	}
	return c.Default, c.Default != "", nil
}

func (c ColumnLabel) Spec() LabelSpec {
	return LabelSpec{Kind: KindColumn, Column: c.Column, Values: c.Values, Default: c.Default}
}

// ExprLabel derives the label with a jq expression. The input document is
//
//	{"source": {"id", "concept", "props"}, "target": {...}, "row": {column: value}}
//
// The first value the expression emits decides: a string is the label;
// null, false or no output at all means no label; anything else is an error.
type ExprLabel struct {
	expr string
	code *gojq.Code
}

// NewExprLabel parses and compiles expr.
func NewExprLabel(expr string) (*ExprLabel, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, invalidf("label expression must be provided")
	}
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, invalidf("parse label expression %q: %v", expr, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, invalidf("compile label expression %q: %v", expr, err)
	}
	return &ExprLabel{expr: expr, code: code}, nil
}

// Expr returns the source expression.
func (e *ExprLabel) Expr() string { return e.expr }

func (e *ExprLabel) DeriveLabel(source, target *graph.Vertex, row Row) (string, bool, error) {
	input := map[string]any{
		"source": vertexInput(source),
		"target": vertexInput(target),
		"row":    row.Map(),
	}
	v, ok := e.code.Run(input).Next()
	if !ok {
		return "", false, nil
	}
	switch v := v.(type) {
	case error:
		return "", false, fmt.Errorf("colmap: label expression %q: %w", e.expr, v)
	case nil:
		return "", false, nil
	case bool:
		if !v {
			return "", false, nil
		}
	case string:
		return v, true, nil
	}
	return "", false, fmt.Errorf("colmap: label expression %q produced %T, want string", e.expr, v)
}

func (e *ExprLabel) Spec() LabelSpec {
	return LabelSpec{Kind: KindExpr, Expr: e.expr}
}

func vertexInput(v *graph.Vertex) map[string]any {
	props := make(map[string]any, len(v.Props))
	for k, p := range v.Props {
		props[k] = p
	}
	return map[string]any{
		"id":      v.ID,
		"concept": v.Concept,
		"props":   props,
	}
}
