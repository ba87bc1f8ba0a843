package tuning

import (
	"errors"
	"fmt"
	"strings"

	goerr "github.com/agilira/go-errors"
)

// Sentinel errors for tuning operations, wrapped inside coded errors so
// callers can test identity with errors.Is.
var (
	// ErrNoPath is returned when a watcher is created without a file path.
	ErrNoPath = errors.New("tuning: watcher requires a file path")

	// ErrMissingEnv is returned when strict expansion finds ${VAR}
	// references with no matching environment variable.
	ErrMissingEnv = errors.New("tuning: missing required environment variables")

	// ErrInvalidTunable is returned when a tunables snapshot fails
	// validation.
	ErrInvalidTunable = errors.New("tuning: invalid tunable value")
)

const errCodeInvalidConfig goerr.ErrorCode = "FETCHOPS_INVALID_CONFIG"

func newMissingEnvError(names []string) error {
	return goerr.Wrap(ErrMissingEnv, errCodeInvalidConfig,
		fmt.Sprintf("missing required environment variables: %s", strings.Join(names, ", ")))
}

func newInvalidTunableError(field string) error {
	return goerr.Wrap(ErrInvalidTunable, errCodeInvalidConfig, "invalid tunable value").
		WithContext("field", field)
}
