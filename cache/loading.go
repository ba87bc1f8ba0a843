package cache

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Loader adds cross-call load deduplication on top of a Cache: concurrent
// misses for the same key share one in-flight load instead of each
// invoking their own. This is the guarantee GetOrSet deliberately does
// not make.
type Loader[V any] struct {
	cache *Cache[V]
	group singleflight.Group
}

// NewLoader wraps cache with a single-flight loading layer.
func NewLoader[V any](cache *Cache[V]) *Loader[V] {
	return &Loader[V]{cache: cache}
}

// GetOrLoad returns the cached value for key or runs load, stores the
// result, and returns it. Concurrent callers for the same key wait on one
// shared load. A caller whose ctx is cancelled detaches with ctx.Err();
// the shared load keeps running for the remaining callers, so load
// receives a context stripped of this caller's cancellation.
func (l *Loader[V]) GetOrLoad(ctx context.Context, key any, load func(context.Context) (V, error)) (V, error) {
	var zero V

	memKey, err := Key(key)
	if err != nil {
		// Unkeyable input cannot be cached or deduplicated; run the
		// load once for this caller.
		return load(ctx)
	}

	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	ch := l.group.DoChan(memKey, func() (any, error) {
		v, lerr := load(context.WithoutCancel(ctx))
		if lerr != nil {
			return zero, lerr
		}
		l.cache.Set(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Cache returns the underlying cache.
func (l *Loader[V]) Cache() *Cache[V] {
	return l.cache
}
