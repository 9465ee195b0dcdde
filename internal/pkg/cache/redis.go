// Package cache wraps the redis client behind a small interface so callers
// (and tests) never depend on redis directly.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Get returns "" with a nil error on a cache miss.
	Get(ctx context.Context, key string) (string, error)
	Key(operation, suffix string) string
}

type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to redis at addr. The prefix namespaces keys per
// service so several services can share one instance.
func NewRedisCache(addr, prefix string) Cache {
	return &redisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
	}
}

func (r *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *redisCache) Key(operation, suffix string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, operation, suffix)
}
