package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores previews by URL with a per-entry TTL so repeated edits do not
// hammer the upstream sites.
type Cache interface {
	Get(ctx context.Context, url string) (Preview, bool, error)
	Set(ctx context.Context, url string, preview Preview, ttl time.Duration) error
	Clear(ctx context.Context) (int, error)
}

// RedisCache is the production cache backend.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisCache{client: client, prefix: "preview:"}, nil
}

func (c *RedisCache) key(url string) string {
	return c.prefix + url
}

func (c *RedisCache) Get(ctx context.Context, url string) (Preview, bool, error) {
	raw, err := c.client.Get(ctx, c.key(url)).Result()
	if errors.Is(err, redis.Nil) {
		return Preview{}, false, nil
	}
	if err != nil {
		return Preview{}, false, fmt.Errorf("cache get: %w", err)
	}
	var preview Preview
	if err := json.Unmarshal([]byte(raw), &preview); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		return Preview{}, false, nil
	}
	return preview, true, nil
}

func (c *RedisCache) Set(ctx context.Context, url string, preview Preview, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(preview)
	if err != nil {
		return fmt.Errorf("marshal preview: %w", err)
	}
	if err := c.client.Set(ctx, c.key(url), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	var cleared int
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return cleared, fmt.Errorf("cache clear: %w", err)
		}
		cleared++
	}
	if err := iter.Err(); err != nil {
		return cleared, fmt.Errorf("cache scan: %w", err)
	}
	return cleared, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// MemoryCache backs deployments that run without Redis.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	preview Preview
	expires time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, url string) (Preview, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[url]
	if !ok || time.Now().After(entry.expires) {
		delete(c.entries, url)
		return Preview{}, false, nil
	}
	return entry.preview, true, nil
}

func (c *MemoryCache) Set(_ context.Context, url string, preview Preview, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = memoryEntry{preview: preview, expires: time.Now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cleared := len(c.entries)
	c.entries = make(map[string]memoryEntry)
	return cleared, nil
}
