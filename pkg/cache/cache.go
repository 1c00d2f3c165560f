// Package cache is a thin JSON-over-Redis cache. Every helper is a no-op when
// Redis is not connected, so callers fall straight through to the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/nuber-eats/nuber/config"
	"github.com/nuber-eats/nuber/pkg/metrics"
)

var RDB *redis.Client

var group singleflight.Group

// Connect initialises the Redis client and verifies the connection with a ping.
func Connect(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		RDB = nil
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	RDB = client
	return nil
}

// Use installs an already-built client. Pass nil to disable caching.
func Use(client *redis.Client) { RDB = client }

// Get unmarshals the value under key into dest. It reports false on a miss
// or any error.
func Get(ctx context.Context, key string, dest interface{}) bool {
	if RDB == nil {
		return false
	}

	val, err := RDB.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	return json.Unmarshal(val, dest) == nil
}

// Set stores value in Redis under key for the given TTL.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return RDB.Set(ctx, key, data, ttl).Err()
}

// Forget removes key.
func Forget(ctx context.Context, key string) error {
	if RDB == nil {
		return nil
	}
	return RDB.Del(ctx, key).Err()
}

// Remember fills dest from key, or from load on a miss, then caches the
// loaded value. Concurrent misses on the same key share one load.
func Remember(ctx context.Context, key string, ttl time.Duration, dest interface{}, load func() (interface{}, error)) error {
	if Get(ctx, key, dest) {
		metrics.CacheHits.WithLabelValues(key).Inc()
		return nil
	}
	metrics.CacheMisses.WithLabelValues(key).Inc()

	v, err, _ := group.Do(key, func() (interface{}, error) {
		loaded, err := load()
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(loaded)
		if err != nil {
			return nil, err
		}
		if RDB != nil {
			_ = RDB.Set(ctx, key, data, ttl).Err()
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dest)
}
