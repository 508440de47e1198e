package toolbridge

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Dispatcher routes the requests of a batch to declared capabilities.
// Capabilities are visited in registry order; each one runs for the first request in the
// batch carrying its name, and later requests with the same name are skipped. Failures are
// per capability: a malformed payload or failing effect never stops the rest of the batch.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	observer Observer
}

// NewDispatcher creates a Dispatcher over reg. Honors WithLogger and WithObserver.
func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	o := buildOptions(opts)
	return &Dispatcher{
		registry: reg,
		logger:   o.logger,
		observer: o.observer,
	}
}

// HandleToolCall dispatches one batch synchronously and returns one CallResult per request,
// in batch order. Effects run on the caller's goroutine in registry order.
func (d *Dispatcher) HandleToolCall(ctx context.Context, tc ToolCall) Report {
	results := make([]CallResult, len(tc.FunctionCalls))
	first := make(map[string]int, len(tc.FunctionCalls))
	for i, call := range tc.FunctionCalls {
		results[i] = CallResult{ID: call.ID, Name: call.Name}
		switch _, declared := d.registry.Lookup(call.Name); {
		case !declared:
			results[i].Outcome = OutcomeUnknown
			results[i].Err = ErrUnknownCapability
			d.logger.DebugContext(ctx, "ignoring unknown capability", "capability", call.Name, "call_id", call.ID)
		case hasKey(first, call.Name):
			results[i].Outcome = OutcomeSkipped
			d.logger.DebugContext(ctx, "skipping repeated capability in batch", "capability", call.Name, "call_id", call.ID)
		default:
			first[call.Name] = i
			continue
		}
		d.observer.OnDispatch(ctx, results[i], 0)
	}

	for _, c := range d.registry.ordered {
		i, ok := first[c.Name()]
		if !ok {
			continue
		}
		start := time.Now()
		d.dispatch(ctx, c, tc.FunctionCalls[i], &results[i])
		d.observer.OnDispatch(ctx, results[i], time.Since(start))
	}
	return Report{Results: results}
}

func (d *Dispatcher) dispatch(ctx context.Context, c *Capability, call FunctionCall, res *CallResult) {
	err := d.invoke(ctx, c, call)
	switch {
	case err == nil:
		res.Outcome = OutcomeHandled
	case errors.Is(err, ErrMalformedArguments):
		res.Outcome = OutcomeMalformed
		res.Err = err
		d.logger.WarnContext(ctx, "malformed capability arguments", "capability", call.Name, "call_id", call.ID, "error", err)
	default:
		res.Outcome = OutcomeEffectFailed
		res.Err = err
		d.logger.ErrorContext(ctx, "capability effect failed", "capability", call.Name, "call_id", call.ID, "error", err)
	}
}

func hasKey(m map[string]int, k string) bool {
	_, ok := m[k]
	return ok
}

func (d *Dispatcher) invoke(ctx context.Context, c *Capability, call FunctionCall) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &EffectError{Capability: c.Name(), Err: &panicError{p: p}}
		}
	}()
	return c.Invoke(ctx, call.Args)
}
