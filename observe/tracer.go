package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// OpMeta contains metadata about a fetch operation for telemetry purposes.
type OpMeta struct {
	Component string // Logical component issuing the operation, e.g. "page_fetcher" (required)
	Operation string // Operation name, e.g. "fetch", "validate", "lookup" (required)
	Target    string // Target identifier, typically a URL or marketplace ID (optional)
	Attempt   int    // Attempt number when the operation runs under retry (optional)
}

// Validate reports whether the metadata carries the required fields.
func (m OpMeta) Validate() error {
	if m.Component == "" {
		return ErrMissingComponent
	}
	return nil
}

// SpanName returns the deterministic span name for this operation.
// Format: fetch.<component>.<operation>
func (m OpMeta) SpanName() string {
	return "fetch." + m.Component + "." + m.Operation
}

// OpID returns the fully qualified operation identifier.
func (m OpMeta) OpID() string {
	return m.Component + "." + m.Operation
}

// attrs returns the identity attributes shared by spans and metrics.
func (m OpMeta) attrs() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("op.id", m.OpID()),
		attribute.String("op.component", m.Component),
		attribute.String("op.name", m.Operation),
	}
}

// Tracer wraps OpenTelemetry tracing with operation-specific span management.
//
// Contract:
// - Concurrency: operations start spans from many goroutines at once.
// - Context: StartSpan derives the returned context from the one given.
// - Errors: EndSpan never panics; a nil error marks the span Ok.
type Tracer interface {
	// StartSpan opens a span for the operation described by meta.
	StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span)

	// EndSpan completes the span, marking it failed when err is non-nil.
	EndSpan(span trace.Span, err error)
}

// tracerImpl names spans and stamps identity attributes from OpMeta.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer wraps an OpenTelemetry tracer in the operation-aware API.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan opens a span named after the operation, carrying its
// identity attributes. The error flag starts false and is flipped by
// EndSpan on failure.
func (t *tracerImpl) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	attrs := append(meta.attrs(), attribute.Bool("op.error", false))
	if meta.Target != "" {
		attrs = append(attrs, attribute.String("op.target", meta.Target))
	}
	if meta.Attempt > 0 {
		attrs = append(attrs, attribute.Int("op.attempt", meta.Attempt))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan closes the span, stamping error status when err is non-nil.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	defer span.End()

	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.Bool("op.error", true))
	span.SetStatus(codes.Error, err.Error())
}

// noopTracer hands out non-recording spans.
type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
