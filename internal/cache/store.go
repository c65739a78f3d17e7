// Package cache holds the key-value store backends and the cache-aside
// fetcher that sits in front of the album upstream.
//
// Entries are eventually consistent: a present entry equals the last
// successful upstream value for its key, and may be stale for up to its TTL.
package cache

import (
	"context"
	"time"
)

type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
