package toolbridge

import (
	"encoding/json"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
)

var errNilSchema = errors.New("argument schema is nil")

// argumentSchema builds the parameter schema of a capability: an object with a single
// required string property named field. The property value is itself an encoded document
// that the capability parses in the second decode stage.
func argumentSchema(field, description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			field: {Type: "string", Description: description},
		},
		Required: []string{field},
	}
}

// schemaMap converts a schema into the generic map form used in declarations.
func schemaMap(s *jsonschema.Schema) (map[string]any, error) {
	if s == nil {
		return nil, errNilSchema
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// cloneSchemaMap returns a deep copy so declarations handed to callers never alias
// the registry's copy.
func cloneSchemaMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneSchemaMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// compileSchema resolves a schema into a validator for the first decode stage.
func compileSchema(s *jsonschema.Schema) (*jsonschema.Resolved, error) {
	if s == nil {
		return nil, errNilSchema
	}
	return s.Resolve(nil)
}
