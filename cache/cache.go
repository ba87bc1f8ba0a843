package cache

import (
	"container/list"
	"encoding/json"
	"errors"
	"sync"
	"time"

	goerr "github.com/agilira/go-errors"

	"github.com/jonwraymond/fetchops/observe"
)

// ErrNoDir is returned by New when disk persistence is requested without
// a directory to persist into.
var ErrNoDir = errors.New("cache: disk persistence requires a directory")

const errCodeInvalidConfig goerr.ErrorCode = "FETCHOPS_INVALID_CONFIG"

// Config configures a Cache.
type Config struct {
	// TTL is the default entry lifetime.
	// Default: 5 minutes
	TTL time.Duration

	// MaxSize caps resident entries; inserting past it evicts the least
	// recently used entry.
	// Default: 100
	MaxSize int

	// PersistToDisk mirrors entries to one JSON file each under Dir.
	// Values must round-trip through encoding/json for the mirror to
	// apply. Memory stays authoritative; disk failures never surface.
	PersistToDisk bool

	// Dir is the mirror directory, created on demand. Required when
	// PersistToDisk is set.
	Dir string

	// Clock supplies time for TTL decisions. Default: cached clock.
	Clock Clock

	// Logger receives debug logs for swallowed failures. Default: no-op.
	Logger observe.Logger

	// Metrics receives cache events. Default: no-op.
	Metrics Metrics
}

// entry is one resident cache entry. Lifetime runs from storedAt for ttl;
// an entry is live while now - storedAt <= ttl.
type entry[V any] struct {
	key      string
	value    V
	storedAt time.Time
	ttl      time.Duration
}

// Cache is a TTL + LRU cache. Expiry is lazy: entries past their lifetime
// are removed when an access touches them, never returned. Get promotes
// the entry to most recently used; Has does not. With PersistToDisk the
// cache keeps a best-effort file mirror and falls back to it on memory
// misses.
type Cache[V any] struct {
	config Config
	disk   *diskStore

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	stats   Stats
}

// New creates a cache with defaults applied. It fails only on
// misconfiguration: persistence without a directory.
func New[V any](config Config) (*Cache[V], error) {
	if config.PersistToDisk && config.Dir == "" {
		return nil, goerr.Wrap(ErrNoDir, errCodeInvalidConfig, "cache: invalid configuration")
	}
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	if config.MaxSize <= 0 {
		config.MaxSize = 100
	}
	if config.Clock == nil {
		config.Clock = defaultClock()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = nopMetrics{}
	}

	c := &Cache[V]{
		config:  config,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
	if config.PersistToDisk {
		c.disk = newDiskStore(config.Dir, config.Logger)
	}
	return c, nil
}

// Get retrieves the value for key. A memory hit promotes the entry to
// most recently used. On a memory miss with the mirror enabled, the entry
// is loaded from disk with its original lifetime and re-admitted. Returns
// the zero value and false on a miss.
func (c *Cache[V]) Get(key any) (V, bool) {
	var zero V

	memKey, err := Key(key)
	if err != nil {
		c.config.Logger.Debug("cache key rejected",
			observe.F("error", err.Error()))
		return zero, false
	}

	if v, ok := c.lookup(memKey); ok {
		return v, true
	}

	if c.disk != nil {
		if v, ok := c.loadFromDisk(memKey); ok {
			return v, true
		}
	}

	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
	c.config.Metrics.RecordMiss()
	return zero, false
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key any, value V) {
	c.SetTTL(key, value, c.config.TTL)
}

// SetTTL stores value under key with an explicit lifetime. A non-positive
// ttl falls back to the default. Inserting a new key at capacity evicts
// the least recently used memory entry; its disk copy, if any, stays
// until it expires or is deleted.
func (c *Cache[V]) SetTTL(key any, value V, ttl time.Duration) {
	memKey, err := Key(key)
	if err != nil {
		c.config.Logger.Debug("cache key rejected",
			observe.F("error", err.Error()))
		return
	}
	if ttl <= 0 {
		ttl = c.config.TTL
	}

	storedAt := c.config.Clock.Now()
	c.store(memKey, value, storedAt, ttl)

	if c.disk != nil {
		c.disk.write(memKey, value, storedAt, ttl)
	}
}

// Has reports whether a live entry exists in memory for key. Unlike Get
// it does not promote the entry, consult the disk mirror, or count toward
// hit statistics; an expired entry found here is still removed.
func (c *Cache[V]) Has(key any) bool {
	memKey, err := Key(key)
	if err != nil {
		return false
	}

	c.mu.Lock()
	elem, ok := c.entries[memKey]
	if !ok {
		c.mu.Unlock()
		return false
	}
	ent := elem.Value.(*entry[V])
	if c.expiredLocked(ent) {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()
	return true
}

// Delete removes the entry and its disk file. Reports whether a memory
// entry existed.
func (c *Cache[V]) Delete(key any) bool {
	memKey, err := Key(key)
	if err != nil {
		return false
	}

	c.mu.Lock()
	elem, ok := c.entries[memKey]
	if ok {
		c.removeLocked(memKey, elem)
	}
	c.mu.Unlock()

	if c.disk != nil {
		c.disk.remove(memKey)
	}
	return ok
}

// Clear empties the cache and removes its disk files.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.mu.Unlock()

	if c.disk != nil {
		c.disk.clear()
	}
}

// GetOrSet returns the cached value for key, or invokes factory exactly
// once for this call, stores its result under the default TTL, and
// returns it. Factory errors are returned unchanged and nothing is
// stored. Concurrent misses for the same key may each invoke their own
// factory; use Loader for cross-call deduplication.
func (c *Cache[V]) GetOrSet(key any, factory func() (V, error)) (V, error) {
	return c.GetOrSetTTL(key, factory, c.config.TTL)
}

// GetOrSetTTL is GetOrSet with an explicit lifetime for the stored value.
func (c *Cache[V]) GetOrSetTTL(key any, factory func() (V, error), ttl time.Duration) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := factory()
	if err != nil {
		var zero V
		return zero, err
	}

	c.SetTTL(key, v, ttl)
	return v, nil
}

// Len reports the number of entries resident in memory, including
// expired entries not yet swept by a lazy access.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// lookup returns a live memory entry, promoting it to most recently
// used. An expired entry is removed and reported as absent.
func (c *Cache[V]) lookup(memKey string) (V, bool) {
	var zero V

	c.mu.Lock()
	elem, ok := c.entries[memKey]
	if !ok {
		c.mu.Unlock()
		return zero, false
	}

	ent := elem.Value.(*entry[V])
	if c.expiredLocked(ent) {
		c.mu.Unlock()
		return zero, false
	}

	c.order.MoveToFront(elem)
	c.stats.Hits++
	v := ent.value
	c.mu.Unlock()

	c.config.Metrics.RecordHit()
	return v, true
}

// loadFromDisk re-admits a mirrored entry with its original lifetime.
func (c *Cache[V]) loadFromDisk(memKey string) (V, bool) {
	var zero V

	raw, storedAt, ttl, ok := c.disk.load(memKey, c.config.Clock.Now())
	if !ok {
		return zero, false
	}

	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		c.config.Logger.Debug("disk entry decode failed",
			observe.F("key", memKey),
			observe.F("error", err.Error()))
		return zero, false
	}

	c.store(memKey, v, storedAt, ttl)

	c.mu.Lock()
	c.stats.Hits++
	c.stats.DiskHits++
	c.mu.Unlock()
	c.config.Metrics.RecordHit()
	c.config.Metrics.RecordDiskHit()
	return v, true
}

// store inserts or replaces the entry under memKey and marks it most
// recently used, evicting from the LRU tail when a new key would exceed
// MaxSize.
func (c *Cache[V]) store(memKey string, value V, storedAt time.Time, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[memKey]; ok {
		ent := elem.Value.(*entry[V])
		ent.value = value
		ent.storedAt = storedAt
		ent.ttl = ttl
		c.order.MoveToFront(elem)
		return
	}

	if len(c.entries) >= c.config.MaxSize {
		c.evictLocked()
	}

	elem := c.order.PushFront(&entry[V]{
		key:      memKey,
		value:    value,
		storedAt: storedAt,
		ttl:      ttl,
	})
	c.entries[memKey] = elem
}

// expiredLocked removes ent when past its lifetime and reports whether it
// did.
func (c *Cache[V]) expiredLocked(ent *entry[V]) bool {
	if c.config.Clock.Now().Sub(ent.storedAt) <= ent.ttl {
		return false
	}
	c.removeLocked(ent.key, c.entries[ent.key])
	c.stats.Expirations++
	c.config.Metrics.RecordExpiration()
	return true
}

func (c *Cache[V]) evictLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	ent := back.Value.(*entry[V])
	c.removeLocked(ent.key, back)
	c.stats.Evictions++
	c.config.Metrics.RecordEviction()
}

func (c *Cache[V]) removeLocked(memKey string, elem *list.Element) {
	c.order.Remove(elem)
	delete(c.entries, memKey)
}
