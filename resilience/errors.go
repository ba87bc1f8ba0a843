package resilience

import (
	"context"
	"errors"
	"time"

	goerr "github.com/agilira/go-errors"
)

// Sentinel errors for resilience operations. They are wrapped inside coded
// errors so callers can test identity with errors.Is and classification
// with the code helpers below.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded is returned when a capped wait for a rate-limit
	// slot gives up before admission.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrThrottleFull is returned when the throttler queue is at capacity.
	ErrThrottleFull = errors.New("resilience: throttler queue is full")

	// ErrTimeout is returned when an operation exceeds its time budget.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// Error codes carried by resilience errors.
const (
	ErrCodeCircuitOpen  goerr.ErrorCode = "FETCHOPS_CIRCUIT_OPEN"
	ErrCodeRateLimited  goerr.ErrorCode = "FETCHOPS_RATE_LIMITED"
	ErrCodeThrottleFull goerr.ErrorCode = "FETCHOPS_THROTTLE_FULL"
	ErrCodeTimeout      goerr.ErrorCode = "FETCHOPS_TIMEOUT"
	ErrCodeTransient    goerr.ErrorCode = "FETCHOPS_TRANSIENT"
)

const (
	msgCircuitOpen  = "circuit breaker is open"
	msgRateLimited  = "rate limit exceeded"
	msgThrottleFull = "throttler queue is full"
	msgTimeout      = "operation timed out"
	msgTransient    = "transient failure"
)

// newCircuitOpenError builds the breaker-open rejection. It is distinct
// from any error the wrapped operation produces and is never retryable:
// retrying against an open breaker only gets rejected again.
func newCircuitOpenError(component string) error {
	e := goerr.Wrap(ErrCircuitOpen, ErrCodeCircuitOpen, msgCircuitOpen)
	if component != "" {
		e = e.WithContext("component", component)
	}
	return e
}

// newRateLimitError builds the rejection for a capped rate-limit wait.
func newRateLimitError(maxRequests int, window time.Duration) error {
	return goerr.Wrap(ErrRateLimitExceeded, ErrCodeRateLimited, msgRateLimited).
		WithContext("max_requests", maxRequests).
		WithContext("window", window.String()).
		AsRetryable()
}

// newThrottleFullError builds the rejection for a bounded throttler queue.
func newThrottleFullError(maxQueue int) error {
	return goerr.Wrap(ErrThrottleFull, ErrCodeThrottleFull, msgThrottleFull).
		WithContext("max_queue", maxQueue).
		AsRetryable()
}

// newTimeoutError builds the timeout error for an expired time budget.
func newTimeoutError(timeout time.Duration) error {
	return goerr.Wrap(ErrTimeout, ErrCodeTimeout, msgTimeout).
		WithContext("timeout", timeout.String()).
		AsRetryable()
}

// MarkRetryable wraps err as a transient, retryable failure. Callers flag
// network-class errors with it so the default retry predicate admits them.
func MarkRetryable(err error) error {
	if err == nil {
		return nil
	}
	return goerr.Wrap(err, ErrCodeTransient, msgTransient).AsRetryable()
}

// IsRetryable reports whether err is flagged retryable anywhere in its
// chain. Plain errors without a retryable flag report false.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable goerr.Retryable
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// IsCircuitOpen reports whether err is a breaker-open rejection.
func IsCircuitOpen(err error) bool {
	return goerr.HasCode(err, ErrCodeCircuitOpen)
}

// IsRateLimited reports whether err is a rate-limit rejection.
func IsRateLimited(err error) bool {
	return goerr.HasCode(err, ErrCodeRateLimited)
}

// IsTimeout reports whether err is a timeout produced by this package.
func IsTimeout(err error) bool {
	return goerr.HasCode(err, ErrCodeTimeout)
}

// DefaultRetryIf is the retry predicate used when RetryConfig.RetryIf is
// nil: retry errors flagged retryable, never retry context cancellation.
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return IsRetryable(err)
}
