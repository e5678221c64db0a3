/*
Package tracing records broadcast activity as lightweight spans.

# Overview

A Tracer collects finished spans on a buffered channel and writes them to a
zap logger from a background goroutine. BroadcastObserver plugs into the
object runtime and emits one span per completed broadcast, continuing the
trace carried by the broadcast's context. HTTPMiddleware traces requests to
the diagnostics server.

# Usage

	tracer := tracing.New("objstress", logger)
	defer tracer.Close()

	object.SetObserver(object.MultiObserver(metrics, tracing.NewBroadcastObserver(tracer)))

	ctx := tracing.WithTrace(ctx, id.NewTraceID(), "")
	err := svc.Broadcast(ctx, cmd, object.BroadcastOptions{})

# Trace Format

Traces use HTTP headers for propagation:
  - X-Trace-ID: identifier for the whole flow
  - X-Span-ID: identifier for the current operation
*/
package tracing
