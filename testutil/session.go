// Package testutil provides test helpers for toolbridge (e.g. MockSession).
package testutil

import (
	"context"
	"sync"

	"github.com/skosovsky/toolbridge"
)

// MockSession is an in-memory toolbridge.Session. Emit delivers a batch to every current
// subscriber; sent responses are recorded in order.
type MockSession struct {
	// SubscribeErr, when set, is returned by SubscribeToolCalls.
	SubscribeErr error
	// SendFn, when set, is called for each response instead of the default nil.
	SendFn func(ctx context.Context, resp toolbridge.ToolResponse) error

	mu        sync.Mutex
	handlers  map[int]toolbridge.Handler
	next      int
	responses []toolbridge.ToolResponse
	sent      chan struct{}
}

// NewMockSession returns an empty MockSession.
func NewMockSession() *MockSession {
	return &MockSession{
		handlers: make(map[int]toolbridge.Handler),
		sent:     make(chan struct{}, 64),
	}
}

// SubscribeToolCalls registers h until the returned func is called.
func (s *MockSession) SubscribeToolCalls(h toolbridge.Handler) (func(), error) {
	if s.SubscribeErr != nil {
		return nil, s.SubscribeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.handlers[id] = h
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.handlers, id)
		})
	}, nil
}

// SendToolResponse records resp, then calls SendFn if set.
func (s *MockSession) SendToolResponse(ctx context.Context, resp toolbridge.ToolResponse) error {
	s.mu.Lock()
	s.responses = append(s.responses, resp)
	s.mu.Unlock()
	select {
	case s.sent <- struct{}{}:
	default:
	}
	if s.SendFn != nil {
		return s.SendFn(ctx, resp)
	}
	return nil
}

// Emit delivers tc to every subscriber synchronously and returns how many received it.
func (s *MockSession) Emit(ctx context.Context, tc toolbridge.ToolCall) int {
	s.mu.Lock()
	handlers := make([]toolbridge.Handler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()
	for _, h := range handlers {
		h(ctx, tc)
	}
	return len(handlers)
}

// Subscribers returns the number of registered handlers.
func (s *MockSession) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// Responses returns a copy of the recorded responses in send order.
func (s *MockSession) Responses() []toolbridge.ToolResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]toolbridge.ToolResponse(nil), s.responses...)
}

// RespondedIDs returns every acknowledged id across all responses, in send order.
func (s *MockSession) RespondedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, resp := range s.responses {
		for _, fr := range resp.FunctionResponses {
			ids = append(ids, fr.ID)
		}
	}
	return ids
}

// WaitResponses blocks until at least n responses were recorded or ctx is done.
func (s *MockSession) WaitResponses(ctx context.Context, n int) error {
	for {
		s.mu.Lock()
		got := len(s.responses)
		s.mu.Unlock()
		if got >= n {
			return nil
		}
		select {
		case <-s.sent:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Ensure MockSession implements Session.
var _ toolbridge.Session = (*MockSession)(nil)
