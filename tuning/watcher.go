package tuning

import (
	"sync"
	"time"

	"github.com/agilira/argus"
	goerr "github.com/agilira/go-errors"

	"github.com/jonwraymond/fetchops/observe"
)

// Config configures a Watcher.
type Config struct {
	// Path is the tunables file to watch. JSON, YAML and TOML are
	// accepted; the format is detected from the file. Required.
	Path string

	// PollInterval is how often the file is checked for changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after every accepted reload, before
	// subscribers. Optional; must be fast and non-blocking.
	OnReload func(old, new Tunables)

	// Logger receives reload and rejection logs. Default: no-op.
	Logger observe.Logger
}

// Watcher keeps a live Tunables snapshot backed by a watched file.
// Reloads that parse and validate replace the snapshot atomically;
// rejected revisions are logged and the running snapshot stays.
type Watcher struct {
	watcher  *argus.Watcher
	logger   observe.Logger
	onReload func(old, new Tunables)

	mu      sync.RWMutex
	current Tunables
	subs    []func(old, new Tunables)
}

// NewWatcher creates a watcher for the file at config.Path. The initial
// snapshot is DefaultTunables until the first load delivers file values.
func NewWatcher(config Config) (*Watcher, error) {
	if config.Path == "" {
		return nil, goerr.Wrap(ErrNoPath, errCodeInvalidConfig, "watcher requires a file path")
	}
	if config.PollInterval == 0 {
		config.PollInterval = time.Second
	} else if config.PollInterval < 100*time.Millisecond {
		config.PollInterval = 100 * time.Millisecond
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	w := &Watcher{
		logger:   config.Logger,
		onReload: config.OnReload,
		current:  DefaultTunables(),
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(config.Path, w.handleChange, argus.Config{
		PollInterval: config.PollInterval,
	})
	if err != nil {
		return nil, err
	}
	w.watcher = watcher

	return w, nil
}

// Start begins watching the file. Starting an already running watcher is
// a no-op.
func (w *Watcher) Start() error {
	if w.watcher.IsRunning() {
		return nil
	}
	return w.watcher.Start()
}

// Stop stops watching the file. The last accepted snapshot remains
// readable through Current.
func (w *Watcher) Stop() error {
	return w.watcher.Stop()
}

// Current returns the live snapshot.
func (w *Watcher) Current() Tunables {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Subscribe registers fn to run after every accepted reload, in
// registration order, after OnReload. Subscribers must be fast; they run
// on the watcher's callback goroutine.
func (w *Watcher) Subscribe(fn func(old, new Tunables)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subs = append(w.subs, fn)
}

// handleChange is called by the file watcher with the parsed document,
// including once for the initial load.
func (w *Watcher) handleChange(data map[string]any) {
	next, err := parseTunables(data)
	if err == nil {
		err = next.Validate()
	}
	if err != nil {
		w.logger.Warn("tunables reload rejected",
			observe.F("error", err.Error()))
		return
	}

	w.mu.Lock()
	old := w.current
	w.current = next
	subs := make([]func(old, new Tunables), len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	w.logger.Info("tunables reloaded",
		observe.F("max_requests", next.MaxRequests),
		observe.F("window", next.Window.String()),
		observe.F("cache_ttl", next.CacheTTL.String()))

	if w.onReload != nil {
		w.onReload(old, next)
	}
	for _, fn := range subs {
		fn(old, next)
	}
}
