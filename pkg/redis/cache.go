package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON encoded values of type T under a key prefix.
type Cache[T any] struct {
	client    redis.UniversalClient
	prefix    string
	ttl       time.Duration
	scanBatch int64
}

// NewCache creates a cache. A zero ttl keeps entries until deleted.
func NewCache[T any](client redis.UniversalClient, prefix string, ttl time.Duration) *Cache[T] {
	if client == nil {
		panic("redis: cache requires a client")
	}
	return &Cache[T]{client: client, prefix: prefix, ttl: ttl, scanBatch: 500}
}

func (c *Cache[T]) key(k string) string {
	return c.prefix + k
}

// Get returns the cached value; ok is false on a miss.
func (c *Cache[T]) Get(ctx context.Context, key string) (value T, ok bool, err error) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, false, nil
	}
	if err != nil {
		return value, false, errors.Join(ErrCacheRead, err)
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, errors.Join(ErrCacheDecode, err)
	}
	return value, true, nil
}

func (c *Cache[T]) Set(ctx context.Context, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Join(ErrCacheDecode, err)
	}
	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		return errors.Join(ErrCacheWrite, err)
	}
	return nil
}

func (c *Cache[T]) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return errors.Join(ErrCacheWrite, err)
	}
	return nil
}

// Purge removes every key under the prefix using SCAN.
func (c *Cache[T]) Purge(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", c.scanBatch).Result()
		if err != nil {
			return errors.Join(ErrCacheRead, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return errors.Join(ErrCacheWrite, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
