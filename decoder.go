package toolbridge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Decoder performs the two-stage argument decode of one capability without binding it to
// an effect. Stage one parses the request's args as an object and extracts the declared
// string field (checked against the declared parameter schema). Stage two parses that
// string into T. Use it in custom dispatchers that need the same contract as Capability.
type Decoder[T any] struct {
	capability string
	field      string
	schema     *jsonschema.Schema
	resolved   *jsonschema.Resolved
	parse      func([]byte) (T, error)
}

// NewDecoder creates a Decoder for the named capability. parse runs stage two; when nil,
// the field value is unmarshaled as JSON into T.
func NewDecoder[T any](capability, field, fieldDescription string, parse func([]byte) (T, error)) (*Decoder[T], error) {
	if capability == "" {
		return nil, ErrEmptyName
	}
	if field == "" {
		return nil, ErrEmptyField
	}
	if parse == nil {
		parse = parseJSON[T]
	}
	schema := argumentSchema(field, fieldDescription)
	resolved, err := compileSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("compile argument schema for %s: %w", capability, err)
	}
	return &Decoder[T]{
		capability: capability,
		field:      field,
		schema:     schema,
		resolved:   resolved,
		parse:      parse,
	}, nil
}

// Field returns the declared argument field name.
func (d *Decoder[T]) Field() string { return d.field }

// Schema returns the declared parameter schema as a map.
func (d *Decoder[T]) Schema() (map[string]any, error) { return schemaMap(d.schema) }

// Decode runs both stages. Every failure is an *ArgumentError (errors.Is ErrMalformedArguments).
func (d *Decoder[T]) Decode(args json.RawMessage) (T, error) {
	var zero T
	raw, err := d.Extract(args)
	if err != nil {
		return zero, err
	}
	v, err := d.parse([]byte(raw))
	if err != nil {
		return zero, d.argumentError(d.field+" is not a valid document: "+err.Error(), err)
	}
	return v, nil
}

// Extract runs stage one only and returns the encoded field value.
func (d *Decoder[T]) Extract(args json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(args)) == 0 {
		return "", d.argumentError("arguments are empty", nil)
	}
	var v any
	if err := json.Unmarshal(args, &v); err != nil {
		return "", d.argumentError("arguments are not valid JSON: "+err.Error(), err)
	}
	if err := d.resolved.Validate(v); err != nil {
		return "", d.argumentError(err.Error(), err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return "", d.argumentError("arguments are not an object", nil)
	}
	raw, ok := obj[d.field].(string)
	if !ok {
		return "", d.argumentError(d.field+" must be a string", nil)
	}
	return raw, nil
}

func (d *Decoder[T]) argumentError(reason string, err error) error {
	return &ArgumentError{Capability: d.capability, Field: d.field, Reason: reason, Err: err}
}

func parseJSON[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
