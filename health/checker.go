package health

import (
	"context"
	"time"
)

// Status grades a component. Higher values are worse; worse relies on
// that ordering.
type Status int

const (
	// StatusHealthy means the component works normally.
	StatusHealthy Status = iota
	// StatusDegraded means the component works with reduced
	// effectiveness, and may recover or worsen.
	StatusDegraded
	// StatusUnhealthy means the component does not work.
	StatusUnhealthy
)

var statusNames = [...]string{"healthy", "degraded", "unhealthy"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// worse returns the more severe of two statuses.
func worse(a, b Status) Status {
	if b > a {
		return b
	}
	return a
}

// Result is the outcome of one health check.
type Result struct {
	// Status is the grade the check assigned.
	Status Status

	// Message says what the check saw, in one line.
	Message string

	// Details carries free-form metadata about the component.
	Details map[string]any

	// Duration is how long the check took.
	Duration time.Duration

	// Timestamp is when the check ran.
	Timestamp time.Time

	// Error holds the failure when Status is unhealthy.
	Error error
}

func stamped(status Status, message string) Result {
	return Result{Status: status, Message: message, Timestamp: time.Now()}
}

// Healthy builds a healthy result.
func Healthy(message string) Result {
	return stamped(StatusHealthy, message)
}

// Degraded builds a degraded result.
func Degraded(message string) Result {
	return stamped(StatusDegraded, message)
}

// Unhealthy builds an unhealthy result carrying err.
func Unhealthy(message string, err error) Result {
	r := stamped(StatusUnhealthy, message)
	r.Error = err
	return r
}

// WithDetails returns a copy of the result with details attached.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDuration returns a copy of the result with its duration set.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// Checker is one component's health probe.
type Checker interface {
	// Name identifies the checker in results and logs.
	Name() string

	// Check probes the component. Implementations should honor ctx and
	// answer quickly; the aggregator abandons checks that outlive its
	// timeout.
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc struct {
	name  string
	check func(context.Context) Result
}

// NewCheckerFunc wraps fn as a named Checker.
func NewCheckerFunc(name string, fn func(context.Context) Result) CheckerFunc {
	return CheckerFunc{name: name, check: fn}
}

// Name identifies the checker.
func (f CheckerFunc) Name() string { return f.name }

// Check invokes the wrapped function.
func (f CheckerFunc) Check(ctx context.Context) Result { return f.check(ctx) }
