package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache is a Redis implementation of the CacheRepository interface.
// Expiry is delegated to Redis key TTLs.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

var _ core.CacheRepository = (*RedisCache)(nil)

type redisEntry struct {
	Verdict   core.Verdict `json:"verdict"`
	Label     int          `json:"label"`
	ModelUsed string       `json:"model_used"`
	LastSeen  time.Time    `json:"last_seen"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// NewRedisCache connects to Redis and creates a new cache
func NewRedisCache(addr string, prefix string, logger *zap.Logger) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisCache(rdb, prefix, logger), nil
}

func newRedisCache(rdb *redis.Client, prefix string, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		rdb:    rdb,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

// Get retrieves a live cached entry
func (c *RedisCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var stored redisEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}

	return &core.CacheEntry{
		Key:       key,
		Verdict:   stored.Verdict,
		Label:     stored.Label,
		ModelUsed: stored.ModelUsed,
		LastSeen:  stored.LastSeen,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// Set stores a cache entry with a TTL derived from its expiry
func (c *RedisCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	ttl := entry.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(redisEntry{
		Verdict:   entry.Verdict,
		Label:     entry.Label,
		ModelUsed: entry.ModelUsed,
		LastSeen:  entry.LastSeen,
		ExpiresAt: entry.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := c.rdb.Set(ctx, c.prefix+entry.Key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis expires keys itself
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis connection
func (c *RedisCache) Stop() {
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("Failed to close Redis client", zap.Error(err))
	}
}
