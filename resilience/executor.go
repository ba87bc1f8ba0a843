package resilience

import (
	"context"
	"time"

	"github.com/jonwraymond/fetchops/observe"
)

// Executor composes the resilience patterns around one named operation,
// mirroring how callers wrap network work by hand: the breaker rejects
// first, retries re-run the guarded chain, and admission control sits
// closest to the operation.
type Executor struct {
	name      string
	breaker   *CircuitBreaker
	retryer   *Retryer
	limiter   *RateLimiter
	throttler *Throttler
	timeout   *Timeout
	logger    observe.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an executor for the named operation. Layers are
// optional and independent; an executor with no options runs op directly.
func NewExecutor(name string, opts ...ExecutorOption) *Executor {
	e := &Executor{
		name:   name,
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds failure isolation to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.breaker = cb
	}
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retryer) ExecutorOption {
	return func(e *Executor) {
		e.retryer = r
	}
}

// WithRateLimiter adds sliding-window admission to the executor.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.limiter = rl
	}
}

// WithThrottler adds bounded concurrency and request spacing to the
// executor.
func WithThrottler(t *Throttler) ExecutorOption {
	return func(e *Executor) {
		e.throttler = t
	}
}

// WithTimeout adds a per-attempt time budget to the executor.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout})
	}
}

// WithLogger sets the executor's logger.
func WithLogger(logger observe.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// Execute runs op through the configured layers.
//
// The wrapping order, outermost first:
//  1. Circuit Breaker - rejects immediately while the dependency is
//     presumed down, before any retry or admission work.
//  2. Retry - re-runs the whole admission chain on retryable failures,
//     so each attempt takes a fresh rate-limit slot.
//  3. Rate Limiter - sliding-window admission.
//  4. Throttler - bounded concurrency with request spacing.
//  5. Timeout - budget for a single attempt, innermost around op.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	execute := op

	if e.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, inner)
		}
	}

	if e.throttler != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.throttler.Throttle(ctx, inner)
		}
	}

	if e.limiter != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.limiter.Execute(ctx, inner)
		}
	}

	if e.retryer != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			_, err := e.retryer.Execute(ctx, e.name, inner)
			return err
		}
	}

	if e.breaker != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.breaker.Execute(ctx, inner)
		}
	}

	err := execute(ctx)
	if err != nil {
		e.logger.Debug("execution failed",
			observe.F("operation", e.name),
			observe.F("error", err.Error()))
	}
	return err
}

// Name returns the operation name the executor was built for.
func (e *Executor) Name() string {
	return e.name
}
