// Package cache provides a small key-value cache abstraction backed by
// Redis. Consumers depend on the Client interface so the cache can be
// replaced by an in-memory fake in tests.
package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/isabelayared/pharmastock-system/pkg/config"
)

// ErrCacheMiss is returned when the key is not present in the cache.
var ErrCacheMiss = redis.Nil

// Client is the contract the rest of the application expects from a cache.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisClient implements Client on top of Redis.
type RedisClient struct {
	rdb *redis.Client
}

// New creates a Redis-backed cache client and verifies connectivity.
func New(cfg *config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisClient{rdb: rdb}, nil
}

// Get retrieves the value stored under key, or ErrCacheMiss.
func (c *RedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores a value under key with an expiration.
func (c *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Delete removes a key from the cache.
func (c *RedisClient) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// Close closes the underlying Redis connection.
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
