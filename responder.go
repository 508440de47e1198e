package toolbridge

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AckDelay is the fixed debounce between dispatching a batch and acknowledging it.
const AckDelay = 200 * time.Millisecond

// Responder acknowledges batches: exactly one FunctionResponse per request id, in batch
// order, sent as a single SendToolResponse call after AckDelay. Pending acknowledgments
// can be cancelled (Close) and awaited (Wait). Transmission failures are logged, never retried.
type Responder struct {
	sender         Sender
	token          string
	delay          time.Duration
	reportFailures bool
	logger         *slog.Logger
	observer       Observer

	mu      sync.Mutex
	pending map[uint64]*pendingAck
	next    uint64
	closed  bool
	wg      *sync.WaitGroup
}

type pendingAck struct {
	timer *time.Timer
	ids   []string
}

// NewResponder creates a Responder sending through sender.
// Honors WithLogger, WithObserver and WithFailureReporting.
func NewResponder(sender Sender, opts ...Option) *Responder {
	return newResponder(sender, "", new(sync.WaitGroup), buildOptions(opts))
}

func newResponder(sender Sender, token string, wg *sync.WaitGroup, o options) *Responder {
	return &Responder{
		sender:         sender,
		token:          token,
		delay:          o.ackDelay,
		reportFailures: o.reportFailures,
		logger:         o.logger,
		observer:       o.observer,
		pending:        make(map[uint64]*pendingAck),
		wg:             wg,
	}
}

// Acknowledge schedules the acknowledgment of tc. It returns false when nothing was
// scheduled: the batch is empty or the Responder is closed. report may be empty; it is
// consulted only when failure reporting is enabled. A nil ctx is treated as context.Background().
func (r *Responder) Acknowledge(ctx context.Context, tc ToolCall, report Report) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(tc.FunctionCalls) == 0 {
		return false
	}
	resp, failed := r.buildResponse(tc, report)
	// The send outlives the inbound event; keep its values but not its cancellation.
	ctx = context.WithoutCancel(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	id := r.next
	r.next++
	r.wg.Add(1)
	r.pending[id] = &pendingAck{
		ids: tc.IDs(),
		timer: time.AfterFunc(r.delay, func() {
			r.fire(ctx, id, resp, failed)
		}),
	}
	return true
}

func (r *Responder) buildResponse(tc ToolCall, report Report) (ToolResponse, int) {
	resp := ToolResponse{FunctionResponses: make([]FunctionResponse, len(tc.FunctionCalls))}
	failed := 0
	for i, call := range tc.FunctionCalls {
		ack := Ack{Success: true}
		if r.reportFailures {
			if res, ok := report.Result(call.ID); ok && res.Outcome.Failed() {
				ack = Ack{Success: false, Error: res.Err.Error()}
				failed++
			}
		}
		resp.FunctionResponses[i] = FunctionResponse{ID: call.ID, Response: ResponsePayload{Output: ack}}
	}
	return resp, failed
}

func (r *Responder) fire(ctx context.Context, id uint64, resp ToolResponse, failed int) {
	defer r.wg.Done()
	r.mu.Lock()
	p, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()
	if !ok {
		// Cancelled after the timer already fired.
		return
	}

	summary := AckSummary{Token: r.token, IDs: p.ids, Failed: failed}
	if err := r.sender.SendToolResponse(ctx, resp); err != nil {
		summary.Err = err
		r.logger.ErrorContext(ctx, "tool response transmission failed", "token", r.token, "ids", p.ids, "error", err)
	} else {
		r.logger.DebugContext(ctx, "tool response sent", "token", r.token, "ids", p.ids)
	}
	r.observer.OnAcknowledge(ctx, summary)
}

// Pending returns the number of scheduled acknowledgments not yet transmitted.
func (r *Responder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Active reports whether the Responder still accepts batches.
func (r *Responder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

// Close stops accepting batches and cancels every pending acknowledgment.
// Transmissions already in progress are not interrupted; use Wait for them.
// Returns the number of cancelled acknowledgments. Safe to call more than once.
func (r *Responder) Close() int {
	r.mu.Lock()
	r.closed = true
	cancelled := make([]*pendingAck, 0, len(r.pending))
	for id, p := range r.pending {
		delete(r.pending, id)
		if p.timer.Stop() {
			// The timer func will never run, so it cannot release its slot.
			r.wg.Done()
		}
		cancelled = append(cancelled, p)
	}
	r.mu.Unlock()

	for _, p := range cancelled {
		r.observer.OnAcknowledge(context.Background(), AckSummary{Token: r.token, IDs: p.ids, Cancelled: true})
	}
	return len(cancelled)
}

// Wait blocks until every scheduled acknowledgment has been transmitted or cancelled, or ctx is done.
func (r *Responder) Wait(ctx context.Context) error {
	return waitGroup(ctx, r.wg)
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
