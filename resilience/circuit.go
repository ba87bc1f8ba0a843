package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/fetchops/observe"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is rejecting all calls.
	StateOpen
	// StateHalfOpen means the circuit is probing whether the dependency
	// has recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	// Default: 5
	FailureThreshold int

	// RecoveryTimeout is how long the circuit stays open before the next
	// call is let through as a recovery probe.
	// Default: 30 seconds
	RecoveryTimeout time.Duration

	// Component labels the guarded dependency in errors and logs.
	Component string

	// OnStateChange is called on every state transition.
	OnStateChange func(from, to State)

	// IsFailure decides whether an error counts against the threshold.
	// Default: every non-nil error is a failure.
	IsFailure func(err error) bool

	// Clock supplies time for the recovery window. Default: cached clock.
	Clock Clock

	// Logger receives transition logs. Default: no-op.
	Logger observe.Logger
}

// CircuitBreaker isolates a failing dependency: consecutive failures open
// the circuit, open circuits reject calls without invoking the operation,
// and a single probe after RecoveryTimeout decides whether to close again.
//
// One breaker guards one logical remote dependency; construct a separate
// instance per dependency.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu              sync.Mutex
	state           State
	failures        int
	lastFailureTime time.Time
}

// BreakerStatus is a snapshot of breaker state.
type BreakerStatus struct {
	State           State
	Failures        int
	LastFailureTime time.Time
}

// NewCircuitBreaker creates a circuit breaker with defaults applied.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 30 * time.Second
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	if config.Clock == nil {
		config.Clock = defaultClock()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs op through the circuit breaker. When the circuit is open
// and the recovery timeout has not elapsed, op is not invoked and the
// breaker-open rejection is returned. The first call after the timeout
// runs as the half-open probe.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := op(ctx)
	cb.settle(err)
	return err
}

// Do runs fn through the breaker and returns its typed result. The zero
// value of V is returned alongside any error, including the breaker-open
// rejection.
func Do[V any](ctx context.Context, cb *CircuitBreaker, fn func(context.Context) (V, error)) (V, error) {
	var result V
	err := cb.Execute(ctx, func(ctx context.Context) error {
		v, ferr := fn(ctx)
		if ferr != nil {
			return ferr
		}
		result = v
		return nil
	})
	return result, err
}

// Status reports the stored breaker state. It is a pure read: an open
// circuit past its recovery timeout still reports open here; the
// open-to-half-open transition happens only on the next Execute.
func (cb *CircuitBreaker) Status() BreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return BreakerStatus{
		State:           cb.state,
		Failures:        cb.failures,
		LastFailureTime: cb.lastFailureTime,
	}
}

// Reset forces the breaker back to closed and clears the failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if cb.state != StateClosed {
		cb.transitionLocked(StateClosed)
	}
}

// admit decides whether a call may proceed. A call admitted while the
// state moves to half-open is the recovery probe; further calls are
// rejected until the probe settles.
func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.config.Clock.Now().Sub(cb.lastFailureTime) > cb.config.RecoveryTimeout {
			cb.transitionLocked(StateHalfOpen)
			return nil
		}
		return newCircuitOpenError(cb.config.Component)
	case StateHalfOpen:
		return newCircuitOpenError(cb.config.Component)
	}

	return nil
}

// settle records the result of an admitted call.
func (cb *CircuitBreaker) settle(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	failed := cb.config.IsFailure(err)

	switch cb.state {
	case StateClosed:
		if failed {
			cb.failures++
			cb.lastFailureTime = cb.config.Clock.Now()
			if cb.failures >= cb.config.FailureThreshold {
				cb.transitionLocked(StateOpen)
			}
		} else {
			cb.failures = 0
		}

	case StateHalfOpen:
		if failed {
			// Probe failed, reopen and restart the recovery window.
			cb.lastFailureTime = cb.config.Clock.Now()
			cb.transitionLocked(StateOpen)
		} else {
			cb.failures = 0
			cb.transitionLocked(StateClosed)
		}
	}
}

func (cb *CircuitBreaker) transitionLocked(to State) {
	from := cb.state
	cb.state = to

	cb.config.Logger.Info("circuit state changed",
		observe.F("component", cb.config.Component),
		observe.F("from", from.String()),
		observe.F("to", to.String()),
		observe.F("failures", cb.failures))

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}
