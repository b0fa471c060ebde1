package logger

import (
	"context"
	"crypto/rand"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "scenariogen"

// SpanContext pairs a span with the context that carries it.
type SpanContext struct {
	ctx  context.Context
	span trace.Span
}

// StartSpan starts a span as a child of whatever span ctx already carries.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) *SpanContext {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, opts...)
	return &SpanContext{ctx: ctx, span: span}
}

// StartSpanFromTraceID starts a span inside the caller-supplied trace, so a
// client sending X-Trace-Id can find its generation in the tracing backend.
// An empty or malformed trace ID falls back to StartSpan.
//
//	sc := logger.StartSpanFromTraceID(ctx, traceID, "scenario.generate")
//	defer sc.End()
//	ctx = sc.Context()
func StartSpanFromTraceID(ctx context.Context, traceIDStr string, name string, opts ...trace.SpanStartOption) *SpanContext {
	if traceIDStr == "" {
		return StartSpan(ctx, name, opts...)
	}
	traceID, err := trace.TraceIDFromHex(traceIDStr)
	if err != nil {
		return StartSpan(ctx, name, opts...)
	}

	// The caller never tells us its span, so the parent gets a synthetic ID.
	// Without one the span context is invalid and the SDK opens a fresh trace.
	var spanID trace.SpanID
	_, _ = rand.Read(spanID[:])

	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	if local := trace.SpanContextFromContext(ctx); local.IsValid() {
		opts = append(opts, trace.WithLinks(trace.Link{SpanContext: local}))
	}

	return StartSpan(trace.ContextWithRemoteSpanContext(ctx, parent), name, opts...)
}

func (sc *SpanContext) Context() context.Context {
	return sc.ctx
}

// End completes the span. Subsequent calls are no-ops.
func (sc *SpanContext) End() {
	if sc.span != nil {
		sc.span.End()
	}
}

func (sc *SpanContext) SetAttributes(kv ...attribute.KeyValue) {
	if sc.span != nil {
		sc.span.SetAttributes(kv...)
	}
}

func (sc *SpanContext) RecordError(err error) {
	if sc.span != nil && err != nil {
		sc.span.RecordError(err)
	}
}

// Fail records err and marks the span failed with a short status description.
func (sc *SpanContext) Fail(err error, description string) {
	sc.RecordError(err)
	if sc.span != nil {
		sc.span.SetStatus(codes.Error, description)
	}
}

func (sc *SpanContext) Span() trace.Span {
	return sc.span
}
