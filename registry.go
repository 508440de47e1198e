package toolbridge

import (
	"fmt"
)

// Registry is the immutable, ordered set of declared capabilities. It is the single source of
// truth for known names; there is no mutation API. Safe for concurrent use.
type Registry struct {
	ordered []*Capability
	byName  map[string]*Capability
}

// NewRegistry creates a Registry from caps in declaration order. Returns ErrEmptyName for a
// nil or unnamed capability and ErrDuplicateCapability when a name repeats.
func NewRegistry(caps ...*Capability) (*Registry, error) {
	r := &Registry{
		ordered: make([]*Capability, 0, len(caps)),
		byName:  make(map[string]*Capability, len(caps)),
	}
	for i, c := range caps {
		if c == nil || c.Name() == "" {
			return nil, fmt.Errorf("capability %d: %w", i, ErrEmptyName)
		}
		if _, exists := r.byName[c.Name()]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCapability, c.Name())
		}
		r.byName[c.Name()] = c
		r.ordered = append(r.ordered, c)
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error. For package-level registries.
func MustRegistry(caps ...*Capability) *Registry {
	r, err := NewRegistry(caps...)
	if err != nil {
		panic("toolbridge: " + err.Error())
	}
	return r
}

// Lookup returns the capability with the given name, or (nil, false) if it is not declared.
func (r *Registry) Lookup(name string) (*Capability, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Len returns the number of declared capabilities.
func (r *Registry) Len() int { return len(r.ordered) }

// Names returns capability names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.ordered))
	for i, c := range r.ordered {
		names[i] = c.Name()
	}
	return names
}

// Declarations returns the session-facing declarations in declaration order
// (e.g. for a session setup message). The result is a copy.
func (r *Registry) Declarations() []Declaration {
	out := make([]Declaration, len(r.ordered))
	for i, c := range r.ordered {
		out[i] = c.Declaration()
	}
	return out
}
