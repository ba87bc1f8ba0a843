package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/fetchops/observe"
)

// slotPollInterval bounds how long Wait sleeps between admission checks
// when the computed reset time is unreliable or far off.
const slotPollInterval = 100 * time.Millisecond

// RateLimiterConfig configures the sliding-window rate limiter.
type RateLimiterConfig struct {
	// MaxRequests is the number of admissions allowed per Window.
	// Default: 10
	MaxRequests int

	// Window is the trailing interval admissions are counted over.
	// Default: 1 second
	Window time.Duration

	// Delay is an optional pause after each admission, spacing requests
	// out even when the window has room. Default: 0 (no pause)
	Delay time.Duration

	// MaxWait caps how long Wait blocks for a slot before giving up with
	// a rate-limit error. Default: 0 (wait until admitted)
	MaxWait time.Duration

	// Clock supplies time for window arithmetic. Default: cached clock.
	Clock Clock

	// Logger receives admission debug logs. Default: no-op.
	Logger observe.Logger
}

// RateLimiter admits at most MaxRequests operations within any trailing
// Window. Admission records a timestamp; timestamps falling out of the
// window free slots for new admissions.
type RateLimiter struct {
	config RateLimiterConfig

	mu         sync.Mutex
	timestamps []time.Time
}

// NewRateLimiter creates a rate limiter with defaults applied.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.MaxRequests <= 0 {
		config.MaxRequests = 10
	}
	if config.Window <= 0 {
		config.Window = time.Second
	}
	if config.Delay < 0 {
		config.Delay = 0
	}
	if config.MaxWait < 0 {
		config.MaxWait = 0
	}
	if config.Clock == nil {
		config.Clock = defaultClock()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	return &RateLimiter{config: config}
}

// Allow reports whether a request may proceed right now. On admission the
// current time is recorded against the window.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.config.Clock.Now()
	rl.pruneLocked(now)

	if len(rl.timestamps) < rl.config.MaxRequests {
		rl.timestamps = append(rl.timestamps, now)
		return true
	}
	return false
}

// Wait blocks until a slot is admitted, the configured MaxWait elapses,
// or ctx ends. After admission it sleeps the configured Delay before
// returning.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	start := time.Now()

	for !rl.Allow() {
		wait := rl.TimeUntilReset()
		if wait <= 0 || wait > slotPollInterval {
			wait = slotPollInterval
		}

		if max := rl.config.MaxWait; max > 0 && time.Since(start)+wait > max {
			rl.config.Logger.Debug("rate limit wait exceeded max wait",
				observe.F("max_wait", max.String()),
				observe.F("waited", time.Since(start).String()))
			return newRateLimitError(rl.config.MaxRequests, rl.config.Window)
		}

		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}

	return sleepCtx(ctx, rl.config.Delay)
}

// TimeUntilReset returns how long until the oldest recorded admission
// exits the window, or 0 when nothing is recorded.
func (rl *RateLimiter) TimeUntilReset() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.config.Clock.Now()
	rl.pruneLocked(now)

	if len(rl.timestamps) == 0 {
		return 0
	}
	return rl.timestamps[0].Add(rl.config.Window).Sub(now)
}

// Remaining returns how many admissions the current window has left.
func (rl *RateLimiter) Remaining() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.pruneLocked(rl.config.Clock.Now())
	return rl.config.MaxRequests - len(rl.timestamps)
}

// Execute waits for admission and then runs op.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := rl.Wait(ctx); err != nil {
		return err
	}
	return op(ctx)
}

// Reset forgets all recorded admissions.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.timestamps = rl.timestamps[:0]
}

// pruneLocked drops timestamps that have exited the trailing window.
// Timestamps are appended in order, so the stale prefix is contiguous.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-rl.config.Window)

	i := 0
	for i < len(rl.timestamps) && !rl.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		rl.timestamps = append(rl.timestamps[:0], rl.timestamps[i:]...)
	}
}
