package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 3600 * time.Second

var (
	ErrEmptyKey = errors.New("cache: empty key")
	// ErrStore marks a failed store command, including an unreachable store.
	ErrStore = errors.New("cache: store unavailable")
	// ErrCodec marks a JSON encode or decode failure on the cached value.
	ErrCodec = errors.New("cache: codec failure")
)

// Aside is a read-through cache in front of a Store. Values are kept as
// their JSON text and written with SETEX semantics on every miss.
type Aside struct {
	Store  Store
	TTL    time.Duration
	Logger *zap.Logger

	// Coalesce merges concurrent misses for the same key into one produce
	// call. Off by default: every miss calls upstream and the last write wins.
	Coalesce bool

	group singleflight.Group
}

func (a *Aside) ttl() time.Duration {
	if a.TTL <= 0 {
		return DefaultTTL
	}
	return a.TTL
}

func (a *Aside) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// GetOrSet returns the cached value for key, or calls produce, caches its
// result for the configured TTL and returns it. Failures from produce, the
// codec or the store are returned as-is and nothing is cached.
func GetOrSet[T any](ctx context.Context, a *Aside, key string, produce func(context.Context) (T, error)) (T, error) {
	var zero T
	if key == "" {
		return zero, ErrEmptyKey
	}
	if a == nil || a.Store == nil {
		return zero, fmt.Errorf("%w: not configured", ErrStore)
	}
	if !a.Coalesce {
		return getOrSet(ctx, a, key, produce)
	}

	// The shared call is detached from any one caller's cancellation; each
	// caller still stops waiting when its own ctx is done.
	shared := context.WithoutCancel(ctx)
	ch := a.group.DoChan(key, func() (any, error) {
		return getOrSet(shared, a, key, produce)
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			a.logger().Debug("cache coalesced", zap.String("key", key))
		}
		if res.Err != nil {
			return zero, res.Err
		}
		out, _ := res.Val.(T)
		return out, nil
	}
}

func getOrSet[T any](ctx context.Context, a *Aside, key string, produce func(context.Context) (T, error)) (T, error) {
	var zero T
	log := a.logger()

	raw, found, err := a.Store.Get(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("%w: get %s: %w", ErrStore, key, err)
	}
	if found {
		var out T
		if err := json.Unmarshal(raw, &out); err != nil {
			return zero, fmt.Errorf("%w: decode %s: %w", ErrCodec, key, err)
		}
		log.Debug("cache hit", zap.String("key", key))
		return out, nil
	}

	log.Debug("cache miss", zap.String("key", key))
	fresh, err := produce(ctx)
	if err != nil {
		return zero, err
	}
	b, err := json.Marshal(fresh)
	if err != nil {
		return zero, fmt.Errorf("%w: encode %s: %w", ErrCodec, key, err)
	}
	if err := a.Store.Set(ctx, key, b, a.ttl()); err != nil {
		return zero, fmt.Errorf("%w: set %s: %w", ErrStore, key, err)
	}
	return fresh, nil
}
