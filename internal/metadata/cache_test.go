package metadata

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	cache, err := NewRedisCache("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis cache: %v", err)
	}
	return cache, s
}

func TestRedisCacheSetGet(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	ctx := context.Background()
	preview := Preview{URL: "https://example.com/a", Title: "A", ReadMinutes: 2}

	if err := cache.Set(ctx, preview.URL, preview, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := cache.Get(ctx, preview.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Title != "A" || got.ReadMinutes != 2 {
		t.Errorf("cached preview = %+v", got)
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	ctx := context.Background()
	if err := cache.Set(ctx, "u", Preview{URL: "u"}, time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	s.FastForward(2 * time.Second)

	_, ok, err := cache.Get(ctx, "u")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestRedisCacheZeroTTLIsNoop(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	ctx := context.Background()
	if err := cache.Set(ctx, "u", Preview{URL: "u"}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	_, ok, err := cache.Get(ctx, "u")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("ttl 0 must not store entries")
	}
}

func TestRedisCacheClear(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	ctx := context.Background()
	for _, url := range []string{"a", "b", "c"} {
		if err := cache.Set(ctx, url, Preview{URL: url}, time.Minute); err != nil {
			t.Fatalf("set %s: %v", url, err)
		}
	}

	cleared, err := cache.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared != 3 {
		t.Errorf("cleared = %d, want 3", cleared)
	}
	_, ok, _ := cache.Get(ctx, "a")
	if ok {
		t.Error("expected miss after clear")
	}
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "u", Preview{URL: "u", Title: "T"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := cache.Get(ctx, "u")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Title != "T" {
		t.Errorf("got %+v", got)
	}

	cleared, err := cache.Clear(ctx)
	if err != nil || cleared != 1 {
		t.Errorf("clear: cleared=%d err=%v", cleared, err)
	}
}
