package external

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medreport-assistant-server/internal/domain"
)

// RedisCache is an optional shared cache tier for deployments running more
// than one instance. It is only constructed when a Redis URL is configured.
type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisCache creates a Redis-backed cache tier and verifies connectivity.
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{redis: client, ttl: ttl}, nil
}

// Get returns the cached result for key. Corrupted entries are dropped and
// reported as misses.
func (c *RedisCache) Get(ctx context.Context, key string) (*domain.MedicalInfo, bool) {
	val, err := c.redis.Get(ctx, c.redisKey(key)).Result()
	if err != nil {
		return nil, false
	}

	var info domain.MedicalInfo
	if err := json.Unmarshal([]byte(val), &info); err != nil {
		c.redis.Del(ctx, c.redisKey(key))
		return nil, false
	}
	return &info, true
}

// Set stores a result with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, info *domain.MedicalInfo) error {
	b, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return c.redis.Set(ctx, c.redisKey(key), b, c.ttl).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.redis.Close()
}

func (c *RedisCache) redisKey(key string) string {
	return "medichat:query:" + key
}
