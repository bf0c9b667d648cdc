package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heartmarshall/solarsite/internal/config"
)

// Redis is a cache shared between processes. Each namespace has a
// generation counter; entries are written under the current generation and
// expire through the Redis TTL, so invalidation is a single INCR.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewRedis wraps a connected client.
func NewRedis(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Generation returns the current generation of ns. Callers read it before
// loading from the store and pass it to Get and Set.
func (c *Redis) Generation(ctx context.Context, ns string) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey(ns)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache.Redis.Generation: %w", err)
	}
	return gen, nil
}

// Get decodes the value cached for key in generation gen into dest and
// reports whether it was present.
func (c *Redis) Get(ctx context.Context, ns string, gen int64, key string, dest any) (bool, error) {
	data, err := c.rdb.Get(ctx, c.entryKey(ns, gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache.Redis.Get: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache.Redis.Get: decode: %w", err)
	}
	return true, nil
}

// Set stores v under key in generation gen. When gen was invalidated in
// the meantime the entry lands under a key no reader asks for and expires.
func (c *Redis) Set(ctx context.Context, ns string, gen int64, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache.Redis.Set: %w", err)
	}
	if err := c.rdb.Set(ctx, c.entryKey(ns, gen, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache.Redis.Set: %w", err)
	}
	return nil
}

// Invalidate orphans every entry in ns; they expire on their own.
func (c *Redis) Invalidate(ctx context.Context, ns string) error {
	if err := c.rdb.Incr(ctx, c.genKey(ns)).Err(); err != nil {
		return fmt.Errorf("cache.Redis.Invalidate: %w", err)
	}
	return nil
}

func (c *Redis) genKey(ns string) string {
	return c.prefix + ":" + ns + ":gen"
}

func (c *Redis) entryKey(ns string, gen int64, key string) string {
	return fmt.Sprintf("%s:%s:%d:%s", c.prefix, ns, gen, key)
}

// Ping checks the Redis connection.
func (c *Redis) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache.Redis.Ping: %w", err)
	}
	return nil
}
