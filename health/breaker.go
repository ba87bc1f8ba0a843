package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/fetchops/resilience"
)

// BreakerChecker reports the health of a guarded remote dependency from
// its circuit breaker: closed with no recent failures is healthy, closed
// with failures accumulating or half-open (recovery probe in flight) is
// degraded, open is unhealthy.
type BreakerChecker struct {
	name    string
	breaker *resilience.CircuitBreaker
}

// NewBreakerChecker surfaces breaker as a named health check. One
// checker per breaker, named after the dependency it guards.
func NewBreakerChecker(name string, breaker *resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{name: name, breaker: breaker}
}

// Name identifies the checker.
func (b *BreakerChecker) Name() string {
	return b.name
}

// Check maps the breaker snapshot to a health result. Reading the
// snapshot never trips or resets the breaker.
func (b *BreakerChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	status := b.breaker.Status()

	details := map[string]any{
		"state":    status.State.String(),
		"failures": status.Failures,
	}
	if !status.LastFailureTime.IsZero() {
		details["last_failure"] = status.LastFailureTime.UTC().Format(time.RFC3339)
	}

	switch status.State {
	case resilience.StateOpen:
		return Unhealthy(
			fmt.Sprintf("circuit open after %d failures", status.Failures),
			resilience.ErrCircuitOpen,
		).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing recovery").WithDetails(details)
	}

	if status.Failures > 0 {
		return Degraded(
			fmt.Sprintf("circuit closed with %d recent failures", status.Failures),
		).WithDetails(details)
	}
	return Healthy("circuit closed").WithDetails(details)
}
