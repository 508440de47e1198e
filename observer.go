package toolbridge

import (
	"context"
	"time"
)

// Observer receives dispatch outcomes and acknowledgment results, e.g. for metrics or tracing.
// Methods may be called from the session's goroutine and from acknowledgment timers concurrently.
type Observer interface {
	OnDispatch(ctx context.Context, res CallResult, dur time.Duration)
	OnAcknowledge(ctx context.Context, ack AckSummary)
}

// AckSummary describes one acknowledgment transmission attempt (or its cancellation).
type AckSummary struct {
	Token     string   // activation token of the binding that scheduled it; empty for a standalone Responder
	IDs       []string // correlation ids in batch order
	Failed    int      // ids acknowledged with success=false
	Cancelled bool     // cancelled by deactivation before transmission
	Err       error    // transmission error returned by the session
}

type nopObserver struct{}

func (nopObserver) OnDispatch(context.Context, CallResult, time.Duration) {}
func (nopObserver) OnAcknowledge(context.Context, AckSummary) {}
