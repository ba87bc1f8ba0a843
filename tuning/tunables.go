package tuning

import "time"

// Tunables is the runtime-adjustable knob set for the fetch pipeline.
// Zero values are normalized by DefaultTunables; consumers read whole
// snapshots, never individual fields under change.
type Tunables struct {
	// MaxRequests and Window pace outbound fetches: at most MaxRequests
	// admissions within any trailing Window.
	// Defaults: 10 requests / 1 second
	MaxRequests int
	Window      time.Duration

	// FailureThreshold and RecoveryTimeout drive the per-dependency
	// circuit breakers.
	// Defaults: 5 failures, 30 second recovery
	FailureThreshold int
	RecoveryTimeout  time.Duration

	// CacheTTL is the lifetime for cached fetch results.
	// Default: 5 minutes
	CacheTTL time.Duration

	// UserAgent identifies outbound requests. Supports ${VAR} expansion.
	UserAgent string

	// ProxyURL routes outbound requests when set. Supports ${VAR}
	// expansion, so credentials can stay in the environment.
	ProxyURL string
}

// DefaultTunables returns the snapshot used before any file is loaded.
// The values match the component defaults, so an absent or empty file
// changes nothing.
func DefaultTunables() Tunables {
	return Tunables{
		MaxRequests:      10,
		Window:           time.Second,
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		CacheTTL:         5 * time.Minute,
	}
}

// Validate reports the first invalid field as a coded error. String
// fields are free-form and never invalid.
func (t Tunables) Validate() error {
	switch {
	case t.MaxRequests <= 0:
		return newInvalidTunableError("max_requests")
	case t.Window <= 0:
		return newInvalidTunableError("window")
	case t.FailureThreshold <= 0:
		return newInvalidTunableError("failure_threshold")
	case t.RecoveryTimeout <= 0:
		return newInvalidTunableError("recovery_timeout")
	case t.CacheTTL <= 0:
		return newInvalidTunableError("cache_ttl")
	}
	return nil
}

// parseTunables builds a snapshot from watched-file data. Unknown keys
// are ignored and malformed values leave the default in place; only a
// failed ${VAR} expansion aborts the parse. Both a nested "fetch"
// section and a flat document are accepted.
func parseTunables(data map[string]any) (Tunables, error) {
	t := DefaultTunables()

	section, ok := data["fetch"].(map[string]any)
	if !ok {
		// The whole document may be the fetch section.
		section = data
	}

	if v, ok := parsePositiveInt(section["max_requests"]); ok {
		t.MaxRequests = v
	}
	if v, ok := parseDuration(section["window"]); ok {
		t.Window = v
	}
	if v, ok := parsePositiveInt(section["failure_threshold"]); ok {
		t.FailureThreshold = v
	}
	if v, ok := parseDuration(section["recovery_timeout"]); ok {
		t.RecoveryTimeout = v
	}
	if v, ok := parseDuration(section["cache_ttl"]); ok {
		t.CacheTTL = v
	}

	if s, ok := section["user_agent"].(string); ok {
		expanded, err := ExpandEnvStrict(s)
		if err != nil {
			return t, err
		}
		t.UserAgent = expanded
	}
	if s, ok := section["proxy_url"].(string); ok {
		expanded, err := ExpandEnvStrict(s)
		if err != nil {
			return t, err
		}
		t.ProxyURL = expanded
	}

	return t, nil
}

// parsePositiveInt extracts a positive integer. JSON decodes numbers as
// float64 while YAML yields int, so both are accepted.
func parsePositiveInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case int64:
		if v > 0 {
			return int(v), true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

// parseDuration extracts a positive duration from a string like "30s"
// or "5m".
func parseDuration(value any) (time.Duration, bool) {
	s, ok := value.(string)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
