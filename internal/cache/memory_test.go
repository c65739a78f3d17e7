package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Unix(1_700_000_000, 0)
	now := base
	s.now = func() time.Time { return now }

	if err := s.Set(ctx, "photos?albumId=2", []byte(`[1]`), 10*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = base.Add(9 * time.Second)
	if b, found, _ := s.Get(ctx, "photos?albumId=2"); !found || string(b) != "[1]" {
		t.Fatalf("before ttl: found=%v value=%q", found, b)
	}
	now = base.Add(11 * time.Second)
	if _, found, _ := s.Get(ctx, "photos?albumId=2"); found {
		t.Fatalf("after ttl: entry still present")
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry should be dropped on read, len=%d", s.Len())
	}
}

func TestMemoryStore_OverwriteResetsTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Unix(1_700_000_000, 0)
	now := base
	s.now = func() time.Time { return now }

	_ = s.Set(ctx, "k", []byte("1"), 10*time.Second)
	now = base.Add(8 * time.Second)
	_ = s.Set(ctx, "k", []byte("2"), 10*time.Second)
	now = base.Add(15 * time.Second)
	b, found, _ := s.Get(ctx, "k")
	if !found || string(b) != "2" {
		t.Fatalf("found=%v value=%q want 2", found, b)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Unix(1_700_000_000, 0)
	now := base
	s.now = func() time.Time { return now }

	_ = s.Set(ctx, "short", []byte("1"), time.Second)
	_ = s.Set(ctx, "long", []byte("2"), time.Hour)
	_ = s.Set(ctx, "forever", []byte("3"), 0)
	now = base.Add(time.Minute)

	if n := s.Sweep(); n != 1 {
		t.Fatalf("swept=%d want 1", n)
	}
	if s.Len() != 2 {
		t.Fatalf("len=%d want 2", s.Len())
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	in := []byte("abc")
	_ = s.Set(ctx, "k", in, time.Minute)
	in[0] = 'x'
	out, _, _ := s.Get(ctx, "k")
	if string(out) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", out)
	}
	out[1] = 'y'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("returned value aliased stored slice: %q", again)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, "k", []byte("v"), time.Minute)
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := s.Get(ctx, "k"); found {
		t.Fatalf("deleted key still present")
	}
}
