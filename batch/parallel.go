package batch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Settled is the tagged outcome of one item under ParallelSettled. Index
// is the item's position in the input slice; exactly one of Value and
// Err is meaningful.
type Settled[R any] struct {
	Index int
	Value R
	Err   error
}

// Parallel runs fn over all items with at most maxConcurrency in flight,
// gated by a Semaphore. Results are ordered by item index. The first
// failure cancels the shared context and is returned; items not yet
// started never start, while already-started work runs until it observes
// the cancellation. A non-positive maxConcurrency runs all items at once.
func Parallel[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error), maxConcurrency int) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = len(items)
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := NewSemaphore(maxConcurrency)

	var acquireErr error
	for i, item := range items {
		// Acquiring before spawning bounds the fan-out; a cancelled
		// group context unblocks the wait so spawning stops early.
		if err := sem.Acquire(gctx); err != nil {
			acquireErr = err
			break
		}

		g.Go(func() error {
			defer sem.Release()

			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if acquireErr != nil {
		// No task failed, so the spawn loop stopped because the caller's
		// context ended.
		return nil, acquireErr
	}
	return results, nil
}

// ParallelSettled runs fn over all items with at most maxConcurrency in
// flight and resolves every item to its own outcome: failures are
// recorded, never propagated, and never affect other items. Outcomes are
// ordered by item index. When ctx ends, items not yet started settle
// with ctx's error. A non-positive maxConcurrency runs all items at
// once.
func ParallelSettled[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error), maxConcurrency int) []Settled[R] {
	outcomes := make([]Settled[R], len(items))
	if len(items) == 0 {
		return outcomes
	}
	if maxConcurrency <= 0 {
		maxConcurrency = len(items)
	}

	sem := NewSemaphore(maxConcurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		if err := sem.Acquire(ctx); err != nil {
			outcomes[i] = Settled[R]{Index: i, Err: err}
			continue
		}

		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer sem.Release()

			v, err := fn(ctx, item)
			outcomes[i] = Settled[R]{Index: i, Value: v, Err: err}
		}(i, item)
	}

	wg.Wait()
	return outcomes
}

// SlidingWindow processes items in fixed-size windows: windows run
// sequentially, all items within a window run concurrently, and delay is
// inserted between windows but not after the last. A window failure
// stops subsequent windows and is returned, discarding earlier results.
// A non-positive windowSize processes one item at a time.
func SlidingWindow[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error), windowSize int, delay time.Duration) ([]R, error) {
	if windowSize <= 0 {
		windowSize = 1
	}

	results := make([]R, 0, len(items))
	for start := 0; start < len(items); start += windowSize {
		end := start + windowSize
		if end > len(items) {
			end = len(items)
		}
		window := items[start:end]

		wres, err := Parallel(ctx, window, fn, len(window))
		if err != nil {
			return nil, err
		}
		results = append(results, wres...)

		if end < len(items) {
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
		}
	}
	return results, nil
}

// sleepCtx sleeps for d unless ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
