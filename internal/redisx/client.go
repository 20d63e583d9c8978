// Package redisx holds the redis client setup and the key/TTL catalog for
// the bot reply cache.
package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// GetString returns the cached value and whether it was present. Cache
// failures are indistinguishable from misses on purpose: the bot falls back
// to the database either way.
func GetString(ctx context.Context, rdb *redis.Client, key string) (string, bool) {
	if rdb == nil {
		return "", false
	}
	v, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func SetString(ctx context.Context, rdb *redis.Client, key, value string, ttl time.Duration) {
	if rdb == nil {
		return
	}
	_ = rdb.Set(ctx, key, value, ttl).Err()
}

func Delete(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	_ = rdb.Del(ctx, keys...).Err()
}
