package batch

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Semaphore is a counting permit gate. Acquire suspends the caller until
// a permit is free; waiters are served in arrival order, so a release
// always hands the permit to the longest-waiting caller.
type Semaphore struct {
	sem     *semaphore.Weighted
	permits int64

	mu   sync.Mutex
	held int64
}

// NewSemaphore creates a semaphore with the given number of permits.
// A non-positive count is treated as one permit.
func NewSemaphore(permits int) *Semaphore {
	if permits <= 0 {
		permits = 1
	}
	return &Semaphore{
		sem:     semaphore.NewWeighted(int64(permits)),
		permits: int64(permits),
	}
}

// Acquire blocks until a permit is available or ctx ends. It returns
// ctx.Err() when the caller gives up waiting; the permit is not held in
// that case.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	s.mu.Lock()
	s.held++
	s.mu.Unlock()
	return nil
}

// TryAcquire takes a permit without waiting. Reports whether it got one.
func (s *Semaphore) TryAcquire() bool {
	if !s.sem.TryAcquire(1) {
		return false
	}
	s.mu.Lock()
	s.held++
	s.mu.Unlock()
	return true
}

// Release returns a permit, waking the longest-waiting acquirer if any.
// Releasing without a held permit panics.
func (s *Semaphore) Release() {
	s.mu.Lock()
	if s.held == 0 {
		s.mu.Unlock()
		panic("batch: semaphore released without a held permit")
	}
	s.held--
	s.mu.Unlock()
	s.sem.Release(1)
}

// Available reports how many permits are currently free. Waiters queued
// behind held permits keep this at zero until they are served.
func (s *Semaphore) Available() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permits - s.held
}

// Execute runs op while holding a permit.
func (s *Semaphore) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := s.Acquire(ctx); err != nil {
		return err
	}
	defer s.Release()

	return op(ctx)
}
