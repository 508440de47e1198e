package toolbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ActivateDeactivate(t *testing.T) {
	var e effects
	m := NewManager(builtinRegistry(t, &e), withAckDelay(time.Millisecond))
	assert.Equal(t, Unbound, m.State())
	assert.Empty(t, m.Token())

	s := newFakeSession()
	require.NoError(t, m.Activate(s))
	assert.Equal(t, Bound, m.State())
	assert.NotEmpty(t, m.Token())
	assert.Equal(t, 1, s.subscribers())

	m.Deactivate()
	assert.Equal(t, Unbound, m.State())
	assert.Equal(t, 0, s.subscribers())
	m.Deactivate()
	assert.Equal(t, Unbound, m.State())
}

func TestManager_EndToEnd(t *testing.T) {
	var e effects
	m := NewManager(builtinRegistry(t, &e), withAckDelay(time.Millisecond))
	s := newFakeSession()
	require.NoError(t, m.Activate(s))

	s.emit(batch(FunctionCall{ID: "1", Name: "render_altair", Args: raw(`{"json_graph":"{\"mark\":\"bar\"}"}`)}))
	waitFor(t, m.Wait)
	assert.Equal(t, []string{`{"mark":"bar"}`}, e.graphs)
	require.Len(t, s.sent(), 1)
	assert.Equal(t, ToolResponse{FunctionResponses: []FunctionResponse{
		{ID: "1", Response: ResponsePayload{Output: Ack{Success: true}}},
	}}, s.sent()[0])

	require.NoError(t, m.Close(context.Background()))
}

func TestManager_ActivateSameSessionIsNoop(t *testing.T) {
	var e effects
	m := NewManager(builtinRegistry(t, &e))
	s := newFakeSession()
	require.NoError(t, m.Activate(s))
	token := m.Token()
	require.NoError(t, m.Activate(s))
	assert.Equal(t, token, m.Token())
	assert.Equal(t, 1, s.subscribers())
	require.NoError(t, m.Close(context.Background()))
}

func TestManager_SessionChangeRebinds(t *testing.T) {
	var e effects
	m := NewManager(builtinRegistry(t, &e), withAckDelay(time.Millisecond))
	first, second := newFakeSession(), newFakeSession()
	require.NoError(t, m.Activate(first))
	token := m.Token()
	require.NoError(t, m.Activate(second))
	assert.NotEqual(t, token, m.Token())
	assert.Equal(t, 0, first.subscribers())
	assert.Equal(t, 1, second.subscribers())
	require.NoError(t, m.Close(context.Background()))
}

func TestManager_DeactivateReactivateHandlesOnce(t *testing.T) {
	var e effects
	m := NewManager(builtinRegistry(t, &e), withAckDelay(time.Millisecond))
	s := newFakeSession()
	require.NoError(t, m.Activate(s))
	m.Deactivate()
	require.NoError(t, m.Activate(s))
	require.NoError(t, m.Rebind(s))
	assert.Equal(t, 1, s.subscribers())

	s.emit(batch(FunctionCall{ID: "1", Name: "render_altair", Args: raw(`{"json_graph":"{}"}`)}))
	waitFor(t, m.Wait)
	assert.Len(t, e.graphs, 1)
	require.Len(t, s.sent(), 1)
	assert.Len(t, s.sent()[0].FunctionResponses, 1)
	require.NoError(t, m.Close(context.Background()))
}

func TestManager_DeactivateCancelsPendingAcks(t *testing.T) {
	var e effects
	obs := &recordingObserver{}
	m := NewManager(builtinRegistry(t, &e), withAckDelay(time.Hour), WithObserver(obs))
	s := newFakeSession()
	require.NoError(t, m.Activate(s))
	s.emit(batch(FunctionCall{ID: "1", Name: "foo"}))
	assert.Equal(t, 1, m.Pending())

	m.Deactivate()
	assert.Equal(t, 0, m.Pending())
	waitFor(t, m.Wait)
	assert.Empty(t, s.sent())
	acks := obs.ackSummaries()
	require.Len(t, acks, 1)
	assert.True(t, acks[0].Cancelled)
	assert.NotEmpty(t, acks[0].Token)
}

func TestManager_StaleHandlerDropsBatch(t *testing.T) {
	var e effects
	m := NewManager(builtinRegistry(t, &e), withAckDelay(time.Millisecond))
	s := newFakeSession()
	require.NoError(t, m.Activate(s))
	s.mu.Lock()
	var stale Handler
	for _, h := range s.handlers {
		stale = h
	}
	s.mu.Unlock()
	m.Deactivate()

	stale(context.Background(), batch(FunctionCall{ID: "1", Name: "render_altair", Args: raw(`{"json_graph":"{}"}`)}))
	waitFor(t, m.Wait)
	assert.Empty(t, e.graphs)
	assert.Empty(t, s.sent())
}

func TestManager_SubscribeFailure(t *testing.T) {
	var e effects
	m := NewManager(builtinRegistry(t, &e))
	s := newFakeSession()
	s.subErr = errors.New("session closed")
	err := m.Activate(s)
	require.ErrorIs(t, err, s.subErr)
	assert.Equal(t, Unbound, m.State())
	assert.Empty(t, m.Token())
}

func TestManager_NilSession(t *testing.T) {
	var e effects
	m := NewManager(builtinRegistry(t, &e))
	require.ErrorIs(t, m.Activate(nil), ErrNilSession)
	require.ErrorIs(t, m.Rebind(nil), ErrNilSession)
}

func TestManager_MalformedStillAcknowledged(t *testing.T) {
	var e effects
	m := NewManager(builtinRegistry(t, &e), withAckDelay(time.Millisecond))
	s := newFakeSession()
	require.NoError(t, m.Activate(s))
	s.emit(batch(
		FunctionCall{ID: "3", Name: "check_work", Args: raw(`{"validation_results":"not-json"}`)},
		FunctionCall{ID: "4", Name: "render_altair", Args: raw(`{"json_graph":"{\"mark\":\"bar\"}"}`)},
		FunctionCall{ID: "5", Name: "foo", Args: raw(`{}`)},
	))
	waitFor(t, m.Wait)
	assert.Empty(t, e.results)
	assert.Equal(t, []string{`{"mark":"bar"}`}, e.graphs)
	require.Len(t, s.sent(), 1)
	var ids []string
	for _, fr := range s.sent()[0].FunctionResponses {
		ids = append(ids, fr.ID)
		assert.True(t, fr.Response.Output.Success)
	}
	assert.Equal(t, []string{"3", "4", "5"}, ids)
	require.NoError(t, m.Close(context.Background()))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unbound", Unbound.String())
	assert.Equal(t, "bound", Bound.String())
}

func TestManager_DeactivateDuringDispatchLogsDroppedBatch(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var m *Manager
	release, err := NewCapability("release", "", "payload", func(context.Context, json.RawMessage) error {
		m.Deactivate()
		return nil
	})
	require.NoError(t, err)
	m = NewManager(MustRegistry(release), WithLogger(logger), withAckDelay(time.Millisecond))

	s := newFakeSession()
	require.NoError(t, m.Activate(s))
	s.emit(batch(FunctionCall{ID: "7", Name: "release", Args: raw(`{"payload":"{}"}`)}))
	waitFor(t, m.Wait)

	assert.Equal(t, Unbound, m.State())
	assert.Empty(t, s.sent())
	assert.Contains(t, buf.String(), "dropping tool call for released binding")
	assert.Contains(t, buf.String(), "ids=[7]")
}

func TestManager_NilEventContext(t *testing.T) {
	var e effects
	m := NewManager(builtinRegistry(t, &e), withAckDelay(time.Millisecond))
	s := newFakeSession()
	require.NoError(t, m.Activate(s))

	var ctx context.Context
	require.NotPanics(t, func() {
		m.handle(ctx, m.Token(), m.responder, batch(FunctionCall{ID: "1", Name: "render_altair", Args: raw(`{"json_graph":"{}"}`)}))
	})
	waitFor(t, m.Wait)
	assert.Len(t, s.sent(), 1)
	require.NoError(t, m.Close(context.Background()))
}
