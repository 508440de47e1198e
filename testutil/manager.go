package testutil

import (
	"github.com/skosovsky/toolbridge"
)

// NewTestManager returns a Manager already bound to a fresh MockSession, suitable for tests.
func NewTestManager(reg *toolbridge.Registry, opts ...toolbridge.Option) (*toolbridge.Manager, *MockSession, error) {
	m := toolbridge.NewManager(reg, opts...)
	s := NewMockSession()
	if err := m.Activate(s); err != nil {
		return nil, nil, err
	}
	return m, s, nil
}
