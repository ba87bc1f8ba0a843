package cache

import (
	"time"

	"github.com/agilira/go-timecache"
)

// Clock supplies the cache's time source. Inject a fake in tests to
// control TTL expiry.
type Clock interface {
	Now() time.Time
}

// cachedClock reads the process-wide cached clock (~1ms resolution),
// which is plenty for TTLs measured in seconds and avoids a syscall per
// lookup.
type cachedClock struct{}

func (cachedClock) Now() time.Time {
	return time.Unix(0, timecache.CachedTimeNano())
}

func defaultClock() Clock {
	return cachedClock{}
}
