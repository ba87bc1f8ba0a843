// Package tuning hot-reloads runtime tunables from a watched file.
//
// A Watcher observes one JSON/YAML/TOML file (github.com/agilira/argus)
// and keeps a typed, validated Tunables snapshot: request pacing,
// breaker thresholds, cache lifetime, and outbound identity. Reloads
// swap the snapshot atomically and notify subscribers; a file revision
// that fails validation is rejected and the running snapshot stays.
//
// String values support strict environment expansion: ${VAR} references
// must resolve, and $$ escapes a literal dollar. See ExpandEnvStrict.
//
// # Usage
//
//	w, err := tuning.NewWatcher(tuning.Config{
//	    Path:         "/etc/fetchops/tunables.yaml",
//	    PollInterval: time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	w.Subscribe(func(old, new tuning.Tunables) {
//	    // Rebuild pacing components from the new snapshot.
//	    swapLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
//	        MaxRequests: new.MaxRequests,
//	        Window:      new.Window,
//	    }))
//	})
//	if err := w.Start(); err != nil {
//	    return err
//	}
//
//	t := w.Current()
package tuning
