package health

import (
	"context"
	"slices"
	"sync"
	"time"
)

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	// Timeout bounds one CheckAll pass; checks still running when it
	// expires report unhealthy with ErrCheckTimeout.
	// Default: 10 seconds
	Timeout time.Duration

	// Sequential runs checks one at a time in registration order
	// instead of fanning out. Checks stay parallel by default.
	Sequential bool
}

// Aggregator runs a set of named checkers as one composite check.
// Registration order is preserved for listing and sequential runs.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string
}

// NewAggregator creates an aggregator with defaults applied.
func NewAggregator(config AggregatorConfig) *Aggregator {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &Aggregator{
		config:   config,
		checkers: make(map[string]Checker),
	}
}

// Register adds checker under name. Registering an existing name swaps
// the checker but keeps its position.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, seen := a.checkers[name]; !seen {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
}

// Unregister removes the named checker.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.checkers, name)
	if i := slices.Index(a.order, name); i >= 0 {
		a.order = slices.Delete(a.order, i, i+1)
	}
}

// CheckerNames lists registered checkers in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return slices.Clone(a.order)
}

// Check runs the single named checker.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}
	return a.invoke(ctx, checker), nil
}

// CheckAll runs every registered checker under one shared timeout and
// returns the results by name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	names := slices.Clone(a.order)
	checkers := make([]Checker, len(names))
	for i, name := range names {
		checkers[i] = a.checkers[name]
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(names))
	if len(names) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if a.config.Sequential {
		for i, name := range names {
			results[name] = a.invoke(ctx, checkers[i])
		}
		return results
	}

	// Each goroutine owns one slot, so no lock is needed around the
	// fan-out.
	slots := make([]Result, len(names))
	var wg sync.WaitGroup
	wg.Add(len(names))
	for i := range names {
		go func() {
			defer wg.Done()
			slots[i] = a.invoke(ctx, checkers[i])
		}()
	}
	wg.Wait()

	for i, name := range names {
		results[name] = slots[i]
	}
	return results
}

// OverallStatus folds a result set into the worst status it contains.
// An empty set reads as healthy.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	overall := StatusHealthy
	for _, result := range results {
		overall = worse(overall, result.Status)
	}
	return overall
}

// invoke runs one checker, filling in duration and timestamp. A check
// that outlives ctx is abandoned and reported unhealthy; its goroutine
// finishes in the background.
func (a *Aggregator) invoke(ctx context.Context, checker Checker) Result {
	start := time.Now()

	done := make(chan Result, 1)
	go func() {
		done <- checker.Check(ctx)
	}()

	select {
	case result := <-done:
		result.Duration = time.Since(start)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		return result
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check abandoned at deadline",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}

// Checker adapts the aggregator itself to the Checker interface, so a
// whole subsystem can nest as one check.
func (a *Aggregator) Checker() Checker {
	return composite{agg: a}
}

type composite struct {
	agg *Aggregator
}

func (c composite) Name() string {
	return "aggregate"
}

func (c composite) Check(ctx context.Context) Result {
	results := c.agg.CheckAll(ctx)
	status := c.agg.OverallStatus(results)

	details := make(map[string]any, len(results))
	for name, result := range results {
		entry := map[string]any{
			"status":  result.Status.String(),
			"message": result.Message,
		}
		if result.Error != nil {
			entry["error"] = result.Error.Error()
		}
		details[name] = entry
	}

	messages := map[Status]string{
		StatusHealthy:   "all components healthy",
		StatusDegraded:  "degraded components present",
		StatusUnhealthy: "failing components present",
	}

	return Result{
		Status:    status,
		Message:   messages[status],
		Details:   details,
		Timestamp: time.Now(),
	}
}
