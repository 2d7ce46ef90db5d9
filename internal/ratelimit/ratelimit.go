// Package ratelimit counts requests per client in fixed time windows.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter increments a windowed counter and returns the new value. The
// window starts with the first increment of a key.
type Counter interface {
	IncrWithExpire(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter keeps counters in Redis so limits hold across instances.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects to Redis and checks the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*RedisCounter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ratelimit: connecting to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisCounter(client), nil
}

// NewRedisCounter wraps an existing client.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, prefix: "gaia:ratelimit:"}
}

// IncrWithExpire increments key and sets its expiry when the key is new.
// INCR and EXPIRE NX run in one pipeline.
func (c *RedisCounter) IncrWithExpire(ctx context.Context, key string, window time.Duration) (int64, error) {
	full := c.prefix + key

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, full)
	pipe.ExpireNX(ctx, full, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("ratelimit: incrementing %s: %w", key, err)
	}
	return incr.Val(), nil
}

func (c *RedisCounter) Close() error {
	return c.client.Close()
}
