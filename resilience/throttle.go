package resilience

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/fetchops/observe"
)

// ThrottlerConfig configures the request throttler.
type ThrottlerConfig struct {
	// MaxConcurrent caps operations running at once.
	// Default: 2
	MaxConcurrent int

	// MinDelay is the minimum spacing between consecutive dispatches,
	// enforced independently of the concurrency cap.
	// Default: 1 second
	MinDelay time.Duration

	// MaxQueue bounds how many callers may wait for dispatch; further
	// calls are rejected with a throttle-full error.
	// Default: 0 (unbounded)
	MaxQueue int

	// Clock supplies time for dispatch spacing. Default: cached clock.
	Clock Clock

	// Logger receives throttling debug logs. Default: no-op.
	Logger observe.Logger
}

// ThrottlerStatus is a snapshot of throttler occupancy.
type ThrottlerStatus struct {
	Running       int
	Queued        int
	MaxConcurrent int
}

// Throttler dispatches operations in arrival order with at most
// MaxConcurrent running at once and at least MinDelay between
// consecutive dispatches. Queued callers are served FIFO: the semaphore
// hands permits to waiters in acquisition order.
type Throttler struct {
	config ThrottlerConfig
	sem    *semaphore.Weighted

	mu       sync.Mutex
	running  int
	queued   int
	nextSlot time.Time
}

// NewThrottler creates a throttler with defaults applied.
func NewThrottler(config ThrottlerConfig) *Throttler {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 2
	}
	if config.MinDelay <= 0 {
		config.MinDelay = time.Second
	}
	if config.MaxQueue < 0 {
		config.MaxQueue = 0
	}
	if config.Clock == nil {
		config.Clock = defaultClock()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	return &Throttler{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Throttle enqueues op, waits for a concurrency permit and the next
// dispatch slot, runs op, and releases the permit. Returns ctx.Err()
// when the caller gives up while queued or waiting for its slot.
func (t *Throttler) Throttle(ctx context.Context, op func(context.Context) error) error {
	if err := t.enqueue(); err != nil {
		return err
	}

	if err := t.sem.Acquire(ctx, 1); err != nil {
		t.mu.Lock()
		t.queued--
		t.mu.Unlock()
		return err
	}

	slot := t.dispatch()
	if err := sleepCtx(ctx, slot.Sub(t.config.Clock.Now())); err != nil {
		t.release()
		return err
	}

	err := op(ctx)
	t.release()
	return err
}

// ThrottleValue runs fn through the throttler and returns its typed
// result. The zero value of V accompanies any error.
func ThrottleValue[V any](ctx context.Context, t *Throttler, fn func(context.Context) (V, error)) (V, error) {
	var result V
	err := t.Throttle(ctx, func(ctx context.Context) error {
		v, ferr := fn(ctx)
		if ferr != nil {
			return ferr
		}
		result = v
		return nil
	})
	return result, err
}

// Status reports current occupancy. Pure read; no dispatch side effects.
func (t *Throttler) Status() ThrottlerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	return ThrottlerStatus{
		Running:       t.running,
		Queued:        t.queued,
		MaxConcurrent: t.config.MaxConcurrent,
	}
}

func (t *Throttler) enqueue() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.config.MaxQueue > 0 && t.queued >= t.config.MaxQueue {
		t.config.Logger.Debug("throttler queue full",
			observe.F("queued", t.queued),
			observe.F("max_queue", t.config.MaxQueue))
		return newThrottleFullError(t.config.MaxQueue)
	}
	t.queued++
	return nil
}

// dispatch claims the next start slot and counts the caller as running.
// Each admitted caller pushes the following slot MinDelay further out,
// which keeps consecutive dispatches spaced even across concurrent
// permit holders.
func (t *Throttler) dispatch() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.queued--
	t.running++

	now := t.config.Clock.Now()
	slot := t.nextSlot
	if slot.Before(now) {
		slot = now
	}
	t.nextSlot = slot.Add(t.config.MinDelay)
	return slot
}

func (t *Throttler) release() {
	t.mu.Lock()
	t.running--
	t.mu.Unlock()
	t.sem.Release(1)
}
