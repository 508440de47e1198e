package toolbridge

import (
	"context"
	"encoding/json"
)

// Capability is a declared, session-callable capability bound to a local effect.
// It is immutable once built; build it with NewCapability or NewCapabilityFunc.
type Capability struct {
	decl  Declaration
	field string
	run   func(ctx context.Context, args json.RawMessage) error
}

// NewCapability builds a Capability whose declared string field carries a JSON document
// decoded into T. The effect is invoked only when both decode stages succeed.
func NewCapability[T any](
	name, description, field string,
	effect func(ctx context.Context, v T) error,
	opts ...CapabilityOption,
) (*Capability, error) {
	return NewCapabilityFunc(name, description, field, nil, effect, opts...)
}

// NewCapabilityFunc is NewCapability with a custom stage-two parser (string payload to T).
// A nil parse falls back to JSON unmarshaling into T.
func NewCapabilityFunc[T any](
	name, description, field string,
	parse func([]byte) (T, error),
	effect func(ctx context.Context, v T) error,
	opts ...CapabilityOption,
) (*Capability, error) {
	var o capabilityOptions
	for _, opt := range opts {
		opt(&o)
	}
	if effect == nil {
		return nil, ErrNilEffect
	}
	dec, err := NewDecoder(name, field, o.fieldDescription, parse)
	if err != nil {
		return nil, err
	}
	params, err := dec.Schema()
	if err != nil {
		return nil, err
	}
	run := func(ctx context.Context, args json.RawMessage) error {
		v, err := dec.Decode(args)
		if err != nil {
			return err
		}
		if err := effect(ctx, v); err != nil {
			return &EffectError{Capability: name, Err: err}
		}
		return nil
	}
	return &Capability{
		decl: Declaration{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
		field: field,
		run:   run,
	}, nil
}

// Name returns the declared capability name.
func (c *Capability) Name() string { return c.decl.Name }

// Description returns the declared description.
func (c *Capability) Description() string { return c.decl.Description }

// Field returns the name of the declared argument field.
func (c *Capability) Field() string { return c.field }

// Declaration returns a copy of the session-facing declaration; the parameter schema is deep-copied.
func (c *Capability) Declaration() Declaration {
	d := c.decl
	d.Parameters = cloneSchemaMap(c.decl.Parameters)
	return d
}

// Invoke decodes args and runs the effect. Decode failures are *ArgumentError,
// effect failures are *EffectError. Panics are not recovered here; Dispatcher does that.
func (c *Capability) Invoke(ctx context.Context, args json.RawMessage) error {
	return c.run(ctx, args)
}
