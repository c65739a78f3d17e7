package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

const (
	maxMemcacheKeyLen   = 250
	maxMemcacheRelative = 30 * 24 * 60 * 60
)

// MemcacheStore talks to one or more memcached servers. The client has no
// context support, so ctx is only checked before each call.
type MemcacheStore struct {
	Client *memcache.Client
}

func NewMemcacheStore(servers ...string) *MemcacheStore {
	return &MemcacheStore{Client: memcache.New(servers...)}
}

func (s *MemcacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	it, err := s.Client.Get(memcacheKey(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return it.Value, true, nil
}

func (s *MemcacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Client.Set(&memcache.Item{
		Key:        memcacheKey(key),
		Value:      value,
		Expiration: memcacheExpiration(ttl, time.Now()),
	})
}

func (s *MemcacheStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.Client.Delete(memcacheKey(key))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}

func (s *MemcacheStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Client.Ping()
}

func (s *MemcacheStore) Close() error { return s.Client.Close() }

// memcacheExpiration converts ttl to memcached's format: relative seconds up
// to 30 days, an absolute unix time beyond that.
func memcacheExpiration(ttl time.Duration, now time.Time) int32 {
	if ttl <= 0 {
		return 0
	}
	secs := wholeSeconds(ttl) / time.Second
	if secs <= maxMemcacheRelative {
		return int32(secs)
	}
	return int32(now.Add(ttl).Unix())
}

// memcacheKey maps keys memcached would reject (too long, whitespace or
// control bytes) onto a sha256 digest. Legal keys pass through untouched.
func memcacheKey(key string) string {
	if legalMemcacheKey(key) {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return "h:" + hex.EncodeToString(sum[:])
}

func legalMemcacheKey(key string) bool {
	if len(key) == 0 || len(key) > maxMemcacheKeyLen {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] <= ' ' || key[i] == 0x7f {
			return false
		}
	}
	return true
}
