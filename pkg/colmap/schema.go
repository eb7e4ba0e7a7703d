package colmap

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	schemaOnce     sync.Once
	documentSchema *jsonschema.Schema
	resolvedSchema *jsonschema.Resolved
	schemaErr      error
)

// Schema returns the JSON Schema of a mapping document.
func Schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(buildSchema)
	return documentSchema, schemaErr
}

func buildSchema() {
	labelObject, err := jsonschema.For[labelFields](nil)
	if err != nil {
		schemaErr = fmt.Errorf("colmap: label schema: %w", err)
		return
	}
	labelObject.Required = []string{"kind"}

	s, err := jsonschema.For[Document](&jsonschema.ForOptions{
		TypeSchemas: map[reflect.Type]*jsonschema.Schema{
			reflect.TypeFor[LabelSpec](): {
				Description: "constant label, or {kind: ...} for a registered label kind",
				OneOf: []*jsonschema.Schema{
					{Type: "string", MinLength: ptr(1)},
					labelObject,
				},
			},
		},
	})
	if err != nil {
		schemaErr = fmt.Errorf("colmap: document schema: %w", err)
		return
	}
	s.Title = "colgraph column mapping document"
	if ents, ok := s.Properties["entities"]; ok {
		ents.MinProperties = ptr(1)
	}

	rs, err := s.Resolve(nil)
	if err != nil {
		schemaErr = fmt.Errorf("colmap: resolve document schema: %w", err)
		return
	}
	documentSchema, resolvedSchema = s, rs
}

// validateInstance checks a decoded YAML value against the document schema.
// The value is normalized through JSON first so that numbers and map types
// match what the validator expects.
func validateInstance(v any) error {
	schemaOnce.Do(buildSchema)
	if schemaErr != nil {
		return schemaErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("document is not JSON-compatible: %w", err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return err
	}
	return resolvedSchema.Validate(instance)
}

func ptr[T any](v T) *T { return &v }
