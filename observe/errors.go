package observe

import "errors"

// Errors returned while validating a Config.
var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")

	// ErrInvalidSamplePct is returned when Tracing.SamplePct falls outside
	// [MinSamplePct, MaxSamplePct].
	ErrInvalidSamplePct = errors.New("observe: sample percentage must be between 0.0 and 1.0")
)

// Errors surfaced at runtime.
var (
	// ErrNilObserver is returned by constructors handed a nil Observer.
	ErrNilObserver = errors.New("observe: observer is nil")

	// ErrMissingComponent is returned when OpMeta.Component is empty.
	ErrMissingComponent = errors.New("observe: op component is required")

	// ErrEndpointNotConfigured is returned when an exporter needs an
	// endpoint environment variable that is not set.
	ErrEndpointNotConfigured = errors.New("observe: endpoint not configured")
)

// Bounds for Tracing.SamplePct.
const (
	MinSamplePct = 0.0
	MaxSamplePct = 1.0
)

// Exporter and level names Validate accepts. The empty string selects
// the subsystem default.
var (
	ValidTracingExporters = []string{"otlp", "jaeger", "stdout", "none", ""}
	ValidMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}
	ValidLogLevels        = []string{"debug", "info", "warn", "error", ""}
)

// RedactedFields lists field keys whose values are masked in log output.
// These keys tend to carry request credentials or session material.
var RedactedFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apiKey",
	"credential",
	"cookie",
	"authorization",
}
