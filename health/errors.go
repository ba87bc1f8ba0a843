package health

import "errors"

// Package sentinels. Checks attach these to results rather than
// returning them, so callers match on result.Error with errors.Is.
var (
	// ErrCheckFailed marks a check that found its component broken.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check abandoned at the aggregator's
	// deadline.
	ErrCheckTimeout = errors.New("health: check timed out")

	// ErrCheckerNotFound is returned when a name has no registered
	// checker.
	ErrCheckerNotFound = errors.New("health: unknown checker")
)
