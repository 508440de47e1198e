package toolbridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// State is the binding state of a Manager.
type State int

const (
	Unbound State = iota
	Bound
)

func (s State) String() string {
	if s == Bound {
		return "bound"
	}
	return "unbound"
}

// Manager binds a Dispatcher and a Responder to a session's invocation-event stream.
// At most one binding is active at a time. Each binding gets an activation token; the
// acknowledgments it schedules are cancelled when the binding is released.
type Manager struct {
	dispatcher *Dispatcher
	opts       options
	logger     *slog.Logger

	mu          sync.Mutex
	state       State
	token       string
	session     Session
	unsubscribe func()
	responder   *Responder
	inflight    sync.WaitGroup
}

// NewManager creates an Unbound Manager dispatching to reg.
// Options apply to the Dispatcher and to every per-binding Responder.
func NewManager(reg *Registry, opts ...Option) *Manager {
	o := buildOptions(opts)
	return &Manager{
		dispatcher: NewDispatcher(reg, opts...),
		opts:       o,
		logger:     o.logger,
	}
}

// Activate binds the Manager to session (Unbound -> Bound). Activating with the session that
// is already bound is a no-op; activating with another session releases the current binding
// first, so two handlers are never registered at once. On subscribe failure the Manager is Unbound.
// Sessions are compared with ==, so session must have a comparable dynamic type (usually a pointer).
func (m *Manager) Activate(session Session) error {
	if session == nil {
		return ErrNilSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Bound && m.session == session {
		return nil
	}
	m.releaseLocked()

	token := uuid.NewString()
	responder := newResponder(session, token, &m.inflight, m.opts)
	handler := func(ctx context.Context, tc ToolCall) {
		m.handle(ctx, token, responder, tc)
	}
	unsubscribe, err := session.SubscribeToolCalls(handler)
	if err != nil {
		responder.Close()
		return fmt.Errorf("subscribe to tool calls: %w", err)
	}
	m.state = Bound
	m.token = token
	m.session = session
	m.unsubscribe = unsubscribe
	m.responder = responder
	m.logger.Info("tool call handler bound", "token", token)
	return nil
}

// Rebind releases the current binding, if any, and binds to session. Unlike Activate it
// always starts a new binding, even for the session that is already bound.
func (m *Manager) Rebind(session Session) error {
	if session == nil {
		return ErrNilSession
	}
	m.Deactivate()
	return m.Activate(session)
}

// Deactivate releases the binding (Bound -> Unbound): the handler is unsubscribed and the
// binding's pending acknowledgments are cancelled. No-op when Unbound.
func (m *Manager) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked()
}

func (m *Manager) releaseLocked() {
	if m.state != Bound {
		return
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	cancelled := m.responder.Close()
	m.logger.Info("tool call handler unbound", "token", m.token, "cancelled_acks", cancelled)
	m.state = Unbound
	m.token = ""
	m.session = nil
	m.unsubscribe = nil
	m.responder = nil
}

// handle is the bound handler. Batches delivered to a released binding are dropped.
func (m *Manager) handle(ctx context.Context, token string, responder *Responder, tc ToolCall) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !responder.Active() {
		m.logger.DebugContext(ctx, "dropping tool call for released binding", "token", token, "ids", tc.IDs())
		return
	}
	report := m.dispatcher.HandleToolCall(ctx, tc)
	if !responder.Acknowledge(ctx, tc, report) && len(tc.FunctionCalls) > 0 {
		// Deactivated while the batch was being dispatched.
		m.logger.DebugContext(ctx, "dropping tool call for released binding", "token", token, "ids", tc.IDs())
	}
}

// State returns the current binding state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token returns the activation token of the current binding, or "" when Unbound.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Pending returns the number of acknowledgments scheduled by the current binding.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.responder == nil {
		return 0
	}
	return m.responder.Pending()
}

// Wait blocks until every acknowledgment scheduled by any binding has been transmitted or
// cancelled, or ctx is done. Wait does not release the binding.
func (m *Manager) Wait(ctx context.Context) error {
	return waitGroup(ctx, &m.inflight)
}

// Close deactivates the Manager and waits for transmissions already in progress.
func (m *Manager) Close(ctx context.Context) error {
	m.Deactivate()
	return m.Wait(ctx)
}
