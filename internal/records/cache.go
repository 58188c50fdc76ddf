package records

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

type noCache struct{}

func (noCache) Get(context.Context, Key) (*Collection, bool) { return nil, false }
func (noCache) Set(context.Context, *Collection)             {}
func (noCache) Invalidate(context.Context, Key)              {}

type memoryEntry struct {
	collection *Collection
	expiresAt  time.Time
}

// MemoryCache is an in-process TTL cache. Expiry is checked lazily on Get;
// there is no background eviction.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryCache) Get(_ context.Context, key Key) (*Collection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key.ID()]
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key.ID())
		return nil, false
	}
	return e.collection.Clone(), true
}

func (m *MemoryCache) Set(_ context.Context, c *Collection) {
	if m.ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[c.Key.ID()] = memoryEntry{collection: c.Clone(), expiresAt: m.now().Add(m.ttl)}
}

func (m *MemoryCache) Invalidate(_ context.Context, key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key.ID())
}

// RedisCache keeps collections in Redis with a TTL. Failures degrade to cache
// misses. A ttl <= 0 disables it, as for MemoryCache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func redisKey(key Key) string {
	return "stats:collection:" + key.ID()
}

func (r *RedisCache) Get(ctx context.Context, key Key) (*Collection, bool) {
	if r.ttl <= 0 {
		return nil, false
	}
	data, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Warn("Redis cache read failed", "key", key.ID(), "error", err)
		return nil, false
	}
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		log.Warn("Discarding undecodable cache entry", "key", key.ID(), "error", err)
		return nil, false
	}
	return &c, true
}

func (r *RedisCache) Set(ctx context.Context, c *Collection) {
	if r.ttl <= 0 {
		return
	}
	data, err := json.Marshal(c)
	if err != nil {
		log.Warn("Failed to encode collection for cache", "key", c.Key.ID(), "error", err)
		return
	}
	if err := r.client.Set(ctx, redisKey(c.Key), data, r.ttl).Err(); err != nil {
		log.Warn("Redis cache write failed", "key", c.Key.ID(), "error", err)
	}
}

func (r *RedisCache) Invalidate(ctx context.Context, key Key) {
	if err := r.client.Del(ctx, redisKey(key)).Err(); err != nil {
		log.Warn("Redis cache invalidation failed", "key", key.ID(), "error", err)
	}
}
