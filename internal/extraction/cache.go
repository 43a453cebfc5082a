package extraction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores successful extraction results by URL
type Cache interface {
	Get(ctx context.Context, url string) (*Recipe, error)
	Set(ctx context.Context, url string, recipe *Recipe) error
}

// ErrCacheMiss is returned by Cache.Get when nothing is stored for a URL
var ErrCacheMiss = errors.New("extraction cache miss")

// RedisCache keeps results in Redis under a hash of the URL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the server in redisURL (redis:// or rediss://)
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opts), ttl: ttl}, nil
}

// CacheKey is the Redis key for url
func CacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "recipe-extract:" + hex.EncodeToString(sum[:])
}

// Get implements Cache
func (c *RedisCache) Get(ctx context.Context, url string) (*Recipe, error) {
	raw, err := c.client.Get(ctx, CacheKey(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var r Recipe
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Set implements Cache
func (c *RedisCache) Set(ctx context.Context, url string, recipe *Recipe) error {
	raw, err := json.Marshal(recipe)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKey(url), raw, c.ttl).Err()
}

// Ping checks the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}
