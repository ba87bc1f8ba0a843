package resilience

import (
	"context"
	"time"

	"github.com/agilira/go-timecache"
)

// Clock supplies current time to window and recovery calculations.
// Tests inject a manual clock; production code uses the default.
type Clock interface {
	Now() time.Time
}

// cachedClock reads go-timecache's cached wall clock, which is far cheaper
// than time.Now on hot admission paths.
type cachedClock struct{}

func (cachedClock) Now() time.Time {
	return time.Unix(0, timecache.CachedTimeNano())
}

func defaultClock() Clock { return cachedClock{} }

// sleepCtx sleeps for d unless ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
