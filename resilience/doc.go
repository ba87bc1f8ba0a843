// Package resilience provides the failure-handling patterns used by
// every network-facing fetch operation: retry with backoff, a circuit
// breaker per remote dependency, sliding-window rate limiting, and a
// FIFO request throttler. The patterns compose into robust execution
// pipelines.
//
// # Patterns
//
//   - Circuit Breaker: isolates a failing dependency after a threshold
//     of consecutive failures, then probes for recovery with a single
//     trial call.
//
//   - Retry: re-invokes a fallible operation under a backoff policy
//     (fixed, linear, exponential) guided by a retryability predicate.
//
//   - Rate Limiter: admits at most MaxRequests operations within any
//     trailing Window, recording admission timestamps.
//
//   - Throttler: dispatches queued operations FIFO with bounded
//     concurrency and minimum spacing between dispatches.
//
//   - Timeout: caps how long a single attempt may run.
//
// # Usage
//
// Each pattern can be used independently or composed together:
//
//	// One breaker per remote dependency
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    FailureThreshold: 5,
//	    RecoveryTimeout:  30 * time.Second,
//	    Component:        "listing-site",
//	})
//
//	// Shared retry policy
//	retry := resilience.NewRetryer(resilience.RetryConfig{
//	    MaxAttempts: 3,
//	    BaseDelay:   time.Second,
//	    Strategy:    resilience.BackoffExponential,
//	})
//
//	// Polite request pacing for the scraped site
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{
//	    MaxRequests: 10,
//	    Window:      time.Second,
//	})
//
//	// Compose patterns around one named operation
//	executor := resilience.NewExecutor("fetch-page",
//	    resilience.WithCircuitBreaker(cb),
//	    resilience.WithRetry(retry),
//	    resilience.WithRateLimiter(rl),
//	    resilience.WithTimeout(10*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return fetchPage(ctx, url)
//	})
//
// Transient failures should be flagged with MarkRetryable so the default
// retry predicate admits them; the breaker-open rejection is detectable
// with errors.Is(err, ErrCircuitOpen) or IsCircuitOpen.
package resilience
