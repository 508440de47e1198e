package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/skosovsky/toolbridge"
)

const maxLineSize = 4 << 20

// serverMessage is the subset of an inbound session message that carries tool calls.
type serverMessage struct {
	ToolCall *toolbridge.ToolCall `json:"toolCall"`
}

// clientMessage wraps an outbound tool response.
type clientMessage struct {
	ToolResponse toolbridge.ToolResponse `json:"toolResponse"`
}

// replaySession is an in-process toolbridge.Session: Run feeds recorded inbound messages
// to subscribers and every tool response is written to out as one JSON line.
type replaySession struct {
	mu       sync.Mutex
	handlers map[int]toolbridge.Handler
	next     int

	outMu sync.Mutex
	enc   *json.Encoder
}

func newReplaySession(out io.Writer) *replaySession {
	return &replaySession{
		handlers: make(map[int]toolbridge.Handler),
		enc:      json.NewEncoder(out),
	}
}

func (s *replaySession) SubscribeToolCalls(h toolbridge.Handler) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.handlers[id] = h
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}, nil
}

func (s *replaySession) SendToolResponse(_ context.Context, resp toolbridge.ToolResponse) error {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return s.enc.Encode(clientMessage{ToolResponse: resp})
}

// Run reads newline-delimited messages from r and delivers their tool calls in order.
// A line is either a server message {"toolCall":{...}} or a bare {"functionCalls":[...]}.
// Messages without tool calls are skipped. Returns the number of delivered batches.
func (s *replaySession) Run(ctx context.Context, r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	delivered := 0
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		tc, err := decodeLine(data)
		if err != nil {
			return delivered, fmt.Errorf("line %d: %w", line, err)
		}
		if tc == nil {
			continue
		}
		s.deliver(ctx, *tc)
		delivered++
	}
	if err := sc.Err(); err != nil {
		return delivered, fmt.Errorf("read input: %w", err)
	}
	return delivered, nil
}

func decodeLine(data []byte) (*toolbridge.ToolCall, error) {
	var msg serverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ToolCall != nil {
		return msg.ToolCall, nil
	}
	var tc toolbridge.ToolCall
	if err := json.Unmarshal(data, &tc); err != nil {
		return nil, err
	}
	if tc.FunctionCalls == nil {
		return nil, nil
	}
	return &tc, nil
}

func (s *replaySession) deliver(ctx context.Context, tc toolbridge.ToolCall) {
	s.mu.Lock()
	handlers := make([]toolbridge.Handler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()
	for _, h := range handlers {
		h(ctx, tc)
	}
}

var _ toolbridge.Session = (*replaySession)(nil)
