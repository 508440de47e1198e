package toolbridge

import (
	"context"
	"encoding/json"
)

// ToolCall is one inbound invocation batch as delivered by a streaming session.
// Wire shape: {"functionCalls":[{"id":..,"name":..,"args":{..}}]}.
type ToolCall struct {
	FunctionCalls []FunctionCall `json:"functionCalls"`
}

// FunctionCall is a single invocation request inside a batch. ID is the correlation id
// and is unique within its batch. Args is kept raw; capabilities decode it in two stages.
type FunctionCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// IDs returns the correlation ids of the batch in delivery order.
func (tc ToolCall) IDs() []string {
	ids := make([]string, len(tc.FunctionCalls))
	for i, call := range tc.FunctionCalls {
		ids[i] = call.ID
	}
	return ids
}

// ToolResponse is the outbound acknowledgment of one batch.
// Wire shape: {"functionResponses":[{"id":..,"response":{"output":{"success":true}}}]}.
type ToolResponse struct {
	FunctionResponses []FunctionResponse `json:"functionResponses"`
}

// FunctionResponse correlates one acknowledgment with its request id.
type FunctionResponse struct {
	ID       string          `json:"id"`
	Response ResponsePayload `json:"response"`
}

// ResponsePayload wraps the acknowledgment output.
type ResponsePayload struct {
	Output Ack `json:"output"`
}

// Ack is the acknowledgment payload. Error is only set when failure reporting is enabled
// (see WithFailureReporting); by default every id is acknowledged with Success=true.
type Ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Declaration is the session-facing description of a capability.
// Parameters is a JSON Schema object (compatible with function declarations of live sessions).
type Declaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Handler receives inbound batches from a session.
type Handler func(ctx context.Context, tc ToolCall)

// Sender transmits acknowledgments back to the session. Implementations must be safe
// for concurrent use: acknowledgments of overlapping batches may be sent concurrently.
type Sender interface {
	SendToolResponse(ctx context.Context, resp ToolResponse) error
}

// Session is the streaming-session collaborator: an invocation-event stream plus the
// outbound acknowledgment channel. The transport itself is not part of this package.
type Session interface {
	Sender
	// SubscribeToolCalls registers h for inbound batches. The returned func removes
	// exactly that registration and must be safe to call once.
	SubscribeToolCalls(h Handler) (unsubscribe func(), err error)
}
