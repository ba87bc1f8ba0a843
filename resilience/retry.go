package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jonwraymond/fetchops/observe"
)

// BackoffStrategy defines how delays grow between attempts.
type BackoffStrategy int

const (
	// BackoffExponential doubles the delay each attempt: BaseDelay * 2^(a-1).
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear grows the delay by BaseDelay each attempt: BaseDelay * a.
	BackoffLinear
	// BackoffFixed uses BaseDelay for every attempt.
	BackoffFixed
)

// String returns the string representation of the strategy.
func (s BackoffStrategy) String() string {
	switch s {
	case BackoffExponential:
		return "exponential"
	case BackoffLinear:
		return "linear"
	case BackoffFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Default: 3
	MaxAttempts int

	// BaseDelay seeds the backoff formula.
	// Default: 1 second
	BaseDelay time.Duration

	// MaxDelay caps the computed delay between attempts.
	// Default: 30 seconds
	MaxDelay time.Duration

	// Strategy selects the backoff formula.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// Jitter adds uniform ±10% noise to each delay to spread out retries.
	Jitter bool

	// RetryIf decides whether an error is worth another attempt.
	// Default: DefaultRetryIf (retryable-flagged errors only).
	RetryIf func(err error) bool

	// OnRetry is called before each inter-attempt delay. A panic in the
	// callback is recovered and ignored; it never aborts the retry loop.
	OnRetry func(attempt int, err error, delay time.Duration)

	// Logger receives per-attempt debug logs. Default: no-op.
	Logger observe.Logger
}

// Outcome summarizes a retry run: how many attempts ran, how long the
// whole loop took, and every attempt error in order.
type Outcome struct {
	Attempts      int
	TotalDuration time.Duration
	Errors        []error
}

// Retryer binds a shared retry policy so call sites don't rebuild config.
type Retryer struct {
	config RetryConfig
}

// NewRetryer creates a retry handler with defaults applied.
func NewRetryer(config RetryConfig) *Retryer {
	normalizeRetryConfig(&config)
	return &Retryer{config: config}
}

// Execute runs op under the bound retry policy. The returned Outcome is
// populated on success and failure alike.
func (r *Retryer) Execute(ctx context.Context, name string, op func(context.Context) error) (Outcome, error) {
	return runRetry(ctx, name, op, r.config)
}

// Config returns the normalized retry configuration.
func (r *Retryer) Config() RetryConfig {
	return r.config
}

// Retry runs op under a per-call policy; the retry loop holds no state
// between calls. On failure the returned error is the last attempt's
// error, unchanged, so callers can inspect the original failure; the
// full error tail lives in the Outcome.
func Retry(ctx context.Context, name string, op func(context.Context) error, config RetryConfig) (Outcome, error) {
	normalizeRetryConfig(&config)
	return runRetry(ctx, name, op, config)
}

func normalizeRetryConfig(config *RetryConfig) {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.RetryIf == nil {
		config.RetryIf = DefaultRetryIf
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
}

func runRetry(ctx context.Context, name string, op func(context.Context) error, config RetryConfig) (Outcome, error) {
	start := time.Now()

	var out Outcome
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		out.Attempts = attempt

		err := op(ctx)
		if err == nil {
			out.TotalDuration = time.Since(start)
			return out, nil
		}

		lastErr = err
		out.Errors = append(out.Errors, err)

		if !config.RetryIf(err) {
			config.Logger.Debug("error is not retryable",
				observe.F("operation", name),
				observe.F("attempt", attempt),
				observe.F("error", err.Error()))
			break
		}
		if attempt == config.MaxAttempts {
			config.Logger.Warn("retry attempts exhausted",
				observe.F("operation", name),
				observe.F("attempts", attempt),
				observe.F("error", err.Error()))
			break
		}

		delay := backoffDelay(config, attempt)
		invokeOnRetry(config.OnRetry, attempt, err, delay)

		config.Logger.Debug("retrying operation",
			observe.F("operation", name),
			observe.F("attempt", attempt),
			observe.F("delay", delay.String()),
			observe.F("error", err.Error()))

		if serr := sleepCtx(ctx, delay); serr != nil {
			out.TotalDuration = time.Since(start)
			return out, serr
		}
	}

	out.TotalDuration = time.Since(start)
	return out, lastErr
}

// backoffDelay computes the delay before attempt+1. The clamp to MaxDelay
// happens before jitter, so jitter noise is proportional to the clamped
// value.
func backoffDelay(config RetryConfig, attempt int) time.Duration {
	var delay time.Duration

	switch config.Strategy {
	case BackoffFixed:
		delay = config.BaseDelay
	case BackoffLinear:
		delay = config.BaseDelay * time.Duration(attempt)
	default:
		delay = time.Duration(float64(config.BaseDelay) * math.Pow(2, float64(attempt-1)))
	}

	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	if config.Jitter && delay > 0 {
		// Uniform ±10% of the computed delay, floored at zero.
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		frac := rand.Float64()*0.2 - 0.1
		delay += time.Duration(float64(delay) * frac)
		if delay < 0 {
			delay = 0
		}
	}

	return delay
}

// invokeOnRetry shields the retry loop from a panicking callback.
func invokeOnRetry(fn func(int, error, time.Duration), attempt int, err error, delay time.Duration) {
	if fn == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	fn(attempt, err, delay)
}
