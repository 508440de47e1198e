// Package toolbridge lets a streaming generative-AI session invoke named host-side
// capabilities ("tools") and receive correlated acknowledgments.
//
// # Overview
//
// A live session emits batches of function calls. This package declares the callable
// capabilities, routes every call of a batch to a local effect and answers with exactly
// one correlated response per call id.
//
// Pipeline: Capability (declaration + two-stage decoder + effect) → Registry →
// Manager binds to the Session → Dispatcher (decode, invoke effect) → Responder
// (one FunctionResponse per id, sent after AckDelay).
//
// # Key concepts
//
//   - Two-stage decode: a call's args are an object whose declared field is itself an
//     encoded document. Stage one extracts the string field, stage two parses it.
//   - Per-capability failures: a malformed payload is logged and skips that effect only;
//     the rest of the batch is still dispatched and every id is still acknowledged.
//   - Scoped binding: Manager holds at most one subscription. Releasing it cancels the
//     acknowledgments that binding scheduled.
//
// # Example
//
//	render, err := toolbridge.RenderAltair(func(_ context.Context, graph json.RawMessage) error {
//	    chart.Store(graph)
//	    return nil
//	})
//	if err != nil { ... }
//	reg := toolbridge.MustRegistry(render)
//	m := toolbridge.NewManager(reg, toolbridge.WithLogger(logger))
//	if err := m.Activate(session); err != nil { ... }
//	defer m.Close(ctx)
package toolbridge
