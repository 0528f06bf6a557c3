package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RequestMeta contains metadata about a gateway request for telemetry purposes.
type RequestMeta struct {
	RequestID string // Per-request identifier
	Operation string // Upstream operation type (embed, vector_search, ...)
	Identity  string // Rate-limit principal (never a raw credential)
}

// SpanName returns the deterministic span name for this request.
// Format: gateway.dispatch.<operation>
func (m RequestMeta) SpanName() string {
	if m.Operation == "" {
		return "gateway.dispatch"
	}
	return "gateway.dispatch." + m.Operation
}

// Tracer wraps OpenTelemetry tracing with dispatch-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a dispatch.
	StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with request metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("gateway.request_id", meta.RequestID),
		attribute.String("gateway.operation", meta.Operation),
	}
	if meta.Identity != "" {
		attrs = append(attrs, attribute.String("gateway.identity", meta.Identity))
	}

	return t.tracer.Start(ctx, meta.SpanName(), trace.WithAttributes(attrs...))
}

// EndSpan ends the span, recording error status if err is non-nil.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Ensure tracerImpl implements Tracer
var _ Tracer = (*tracerImpl)(nil)
