// Package cache provides the response cache used for per-user list reads.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache stores opaque values by key with a time to live.
type Cache interface {
	// Get reports a miss with ok == false and a nil error.
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Key builds the cache key for a user's view of an API resource path.
func Key(userID, path string) string {
	return "blocniti:" + userID + ":" + strings.TrimSuffix(path, "/")
}

// LoadTimeout bounds a shared load, which runs detached from any one caller.
const LoadTimeout = 30 * time.Second

// ReadThrough serves values from a Cache and loads them on a miss. Concurrent
// misses on the same key share one load. A load that overlaps an Invalidate
// of its key returns its result to the callers but does not cache it.
type ReadThrough struct {
	cache  Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger

	mu   sync.Mutex
	gens map[string]uint64
}

func NewReadThrough(c Cache, ttl time.Duration, logger *slog.Logger) *ReadThrough {
	if c == nil {
		c = Nop{}
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadThrough{cache: c, ttl: ttl, logger: logger, gens: make(map[string]uint64)}
}

func (rt *ReadThrough) generation(key string) uint64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.gens[key]
}

// Invalidate drops keys. Failures are logged and returned.
func (rt *ReadThrough) Invalidate(ctx context.Context, keys ...string) error {
	rt.mu.Lock()
	for _, k := range keys {
		rt.gens[k]++
		// later reads start a fresh load instead of joining a stale one
		rt.group.Forget(k)
	}
	rt.mu.Unlock()

	if err := rt.cache.Delete(ctx, keys...); err != nil {
		rt.logger.Warn("cache invalidate failed", slog.Any("keys", keys), slog.Any("error", err))
		return err
	}
	return nil
}

// Fetch returns the cached value for key or calls load and caches its result.
// Cache errors never fail the read; they are logged and load is used.
func Fetch[T any](ctx context.Context, rt *ReadThrough, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T

	if b, ok, err := rt.cache.Get(ctx, key); err != nil {
		rt.logger.Warn("cache get failed", slog.String("key", key), slog.Any("error", err))
	} else if ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
		rt.logger.Warn("cache entry undecodable", slog.String("key", key))
	}

	ch := rt.group.DoChan(key, func() (any, error) {
		gen := rt.generation(key)

		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		v, err := load(lctx)
		if err != nil {
			return nil, err
		}
		rt.store(lctx, key, gen, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// store caches v unless key was invalidated after the load began.
func (rt *ReadThrough) store(ctx context.Context, key string, gen uint64, v any) {
	if rt.generation(key) != gen {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := rt.cache.Set(ctx, key, b, rt.ttl); err != nil {
		rt.logger.Warn("cache set failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	// an Invalidate that landed between the check and the write
	if rt.generation(key) != gen {
		_ = rt.cache.Delete(ctx, key)
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error                  { return nil }
func (Nop) Close() error                                             { return nil }
