package colmap

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Label kinds understood by the default registry.
const (
	KindConstant = "constant"
	KindColumn   = "column"
	KindExpr     = "expr"
)

// Document is the column mapping document as written in YAML.
type Document struct {
	Name          string                `json:"name,omitempty" yaml:"name,omitempty"`
	SkipRows      int                   `json:"skipRows,omitempty" yaml:"skipRows,omitempty" jsonschema:"number of leading records to ignore"`
	Header        bool                  `json:"header,omitempty" yaml:"header,omitempty" jsonschema:"first record after skipRows names the columns"`
	Columns       []string              `json:"columns,omitempty" yaml:"columns,omitempty" jsonschema:"explicit column names, exclusive with header"`
	Entities      map[string]EntitySpec `json:"entities" yaml:"entities"`
	Relationships []RelationshipSpec    `json:"relationships,omitempty" yaml:"relationships,omitempty"`
}

// EntitySpec configures one entity produced per row.
type EntitySpec struct {
	Concept    string         `json:"concept" yaml:"concept"`
	ID         string         `json:"id" yaml:"id" jsonschema:"column holding the natural key"`
	Properties []PropertySpec `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// PropertySpec copies a column into a vertex property. Column defaults to
// Name.
type PropertySpec struct {
	Name     string `json:"name" yaml:"name"`
	Column   string `json:"column,omitempty" yaml:"column,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty" jsonschema:"skip the entity when the cell is blank"`
}

// RelationshipSpec configures one relationship mapping.
type RelationshipSpec struct {
	Source string    `json:"source" yaml:"source"`
	Target string    `json:"target" yaml:"target"`
	Label  LabelSpec `json:"label" yaml:"label"`
}

// LabelSpec configures a label deriver. In YAML and JSON a bare string is
// shorthand for {kind: constant, value: <string>}.
type LabelSpec struct {
	Kind    string            `json:"kind,omitempty" yaml:"kind,omitempty"`
	Value   string            `json:"value,omitempty" yaml:"value,omitempty"`
	Column  string            `json:"column,omitempty" yaml:"column,omitempty"`
	Values  map[string]string `json:"values,omitempty" yaml:"values,omitempty"`
	Default string            `json:"default,omitempty" yaml:"default,omitempty"`
	Expr    string            `json:"expr,omitempty" yaml:"expr,omitempty"`
}

// labelFields has LabelSpec's fields without its marshaling methods.
type labelFields LabelSpec

// IsZero reports whether s is entirely unset.
func (s LabelSpec) IsZero() bool {
	return s.Kind == "" && s.Value == "" && s.Column == "" && len(s.Values) == 0 &&
		s.Default == "" && s.Expr == ""
}

// shorthand reports whether s can be written as a bare string.
func (s LabelSpec) shorthand() bool {
	return s.Kind == KindConstant && s.Value != "" &&
		s.Column == "" && len(s.Values) == 0 && s.Default == "" && s.Expr == ""
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *LabelSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = LabelSpec{Kind: KindConstant, Value: node.Value}
		return nil
	case yaml.MappingNode:
		var f labelFields
		if err := node.Decode(&f); err != nil {
			return err
		}
		*s = LabelSpec(f)
		return nil
	}
	return fmt.Errorf("line %d: label must be a string or a mapping", node.Line)
}

// MarshalYAML implements yaml.Marshaler.
func (s LabelSpec) MarshalYAML() (any, error) {
	switch {
	case s.IsZero():
		return nil, nil
	case s.shorthand():
		return s.Value, nil
	}
	return labelFields(s), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *LabelSpec) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = LabelSpec{Kind: KindConstant, Value: str}
		return nil
	}
	var f labelFields
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("label must be a string or an object: %w", err)
	}
	*s = LabelSpec(f)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s LabelSpec) MarshalJSON() ([]byte, error) {
	switch {
	case s.IsZero():
		return []byte("null"), nil
	case s.shorthand():
		return json.Marshal(s.Value)
	}
	return json.Marshal(labelFields(s))
}
