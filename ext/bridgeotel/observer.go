// Package bridgeotel records toolbridge dispatch and acknowledgment signals into OpenTelemetry.
package bridgeotel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/skosovsky/toolbridge"
)

// Metric names.
const (
	MetricDispatchCalls   = "toolbridge.dispatch.calls"
	MetricDispatchLatency = "toolbridge.dispatch.latency"
	MetricAckBatches      = "toolbridge.ack.batches"
	MetricAckResponses    = "toolbridge.ack.responses"
)

// Observer implements toolbridge.Observer on top of an OpenTelemetry meter and tracer.
// A nil tracer disables spans.
type Observer struct {
	tracer trace.Tracer

	calls     metric.Int64Counter
	latency   metric.Float64Histogram
	batches   metric.Int64Counter
	responses metric.Int64Counter
}

// NewObserver creates an Observer bound to the provided meter and tracer.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	calls, err := meter.Int64Counter(
		MetricDispatchCalls,
		metric.WithDescription("Number of dispatched capability calls by outcome"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		MetricDispatchLatency,
		metric.WithDescription("Capability decode and effect latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	batches, err := meter.Int64Counter(
		MetricAckBatches,
		metric.WithDescription("Number of acknowledgment batches by status"),
	)
	if err != nil {
		return nil, err
	}
	responses, err := meter.Int64Counter(
		MetricAckResponses,
		metric.WithDescription("Number of acknowledged call ids by status"),
	)
	if err != nil {
		return nil, err
	}
	return &Observer{
		tracer:    tracer,
		calls:     calls,
		latency:   latency,
		batches:   batches,
		responses: responses,
	}, nil
}

// OnDispatch records one dispatch outcome.
func (o *Observer) OnDispatch(ctx context.Context, res toolbridge.CallResult, dur time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("capability", res.Name),
		attribute.String("outcome", res.Outcome.String()),
	}
	options := metric.WithAttributes(attrs...)
	o.calls.Add(ctx, 1, options)
	o.latency.Record(ctx, dur.Seconds(), options)

	if o.tracer == nil {
		return
	}
	end := time.Now()
	_, span := o.tracer.Start(ctx, "toolbridge.dispatch",
		trace.WithTimestamp(end.Add(-dur)),
		trace.WithAttributes(append(attrs, attribute.String("call_id", res.ID))...),
	)
	if res.Outcome.Failed() {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Outcome.String())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(end))
}

// OnAcknowledge records one acknowledgment transmission or cancellation.
func (o *Observer) OnAcknowledge(ctx context.Context, ack toolbridge.AckSummary) {
	if o == nil {
		return
	}
	status := ackStatus(ack)
	o.batches.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	if ack.Failed > 0 {
		o.responses.Add(ctx, int64(ack.Failed), metric.WithAttributes(attribute.String("status", "failure")))
	}
	if ok := len(ack.IDs) - ack.Failed; ok > 0 {
		o.responses.Add(ctx, int64(ok), metric.WithAttributes(attribute.String("status", status)))
	}

	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(ctx, "toolbridge.acknowledge", trace.WithAttributes(
		attribute.String("token", ack.Token),
		attribute.StringSlice("call_ids", ack.IDs),
		attribute.String("status", status),
	))
	if ack.Err != nil {
		span.RecordError(ack.Err)
		span.SetStatus(codes.Error, status)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func ackStatus(ack toolbridge.AckSummary) string {
	switch {
	case ack.Cancelled:
		return "cancelled"
	case ack.Err != nil:
		return "error"
	default:
		return "sent"
	}
}

var _ toolbridge.Observer = (*Observer)(nil)
