package observe

import (
	"context"
	"time"
)

// Operation is the unit of work the middleware wraps. It matches the
// operation shape the resilience package executes, so an instrumented
// operation composes directly with retry, breaker, and limiter wrappers.
type Operation func(ctx context.Context) error

// Middleware wraps operation execution with observability (tracing, metrics, logging).
//
// Contract:
// - Concurrency: the wrapped Operation stays safe for concurrent use.
// - Context: the operation runs with the span's context.
// - Errors: the operation's error is recorded, then returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware combines a tracer, metrics, and a logger into one wrapper.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// Wrap instruments op: a span around the call, duration and outcome
// metrics, and one log line per execution.
func (m *Middleware) Wrap(meta OpMeta, op Operation) Operation {
	return func(ctx context.Context) error {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		err := op(ctx)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordOperation(ctx, meta, duration, err)
		m.logOutcome(meta, duration, err)

		return err
	}
}

func (m *Middleware) logOutcome(meta OpMeta, duration time.Duration, err error) {
	logger := m.logger.WithOp(meta)
	durationField := F("duration_ms", float64(duration.Milliseconds()))

	if err != nil {
		logger.Error("operation failed", durationField, F("error", err.Error()))
		return
	}
	logger.Info("operation completed", durationField)
}

// MiddlewareFromObserver wires a Middleware straight from an Observer's
// primitives.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
