package redis

import (
	"context"
	"errors"
	"time"

	"hirefeed/internal/cache"

	"github.com/redis/go-redis/v9"
)

// Cache keeps search responses in Redis so that runs on different hosts
// can share them.
type Cache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

func New(opts cache.Options) *Cache {
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = cache.DefaultOptions().DefaultTTL
	}

	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		}),
		defaultTTL: ttl,
	}
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := cache.Encode(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	return mapError(c.client.Set(ctx, key, data, ttl).Err())
}

func (c *Cache) Get(ctx context.Context, key string, value interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return mapError(err)
	}
	return cache.Decode(data, value)
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func mapError(err error) error {
	switch {
	case errors.Is(err, redis.Nil):
		return cache.ErrNotFound
	case errors.Is(err, redis.ErrClosed):
		return cache.ErrClosed
	default:
		return err
	}
}
