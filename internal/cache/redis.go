// Package cache keeps raw responses of low-churn ESPN reference endpoints in
// Redis so repeated refreshes do not re-download them.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"ncaam/ingestion/internal/metrics"
)

const keyPrefix = "ncaam:espn:"

// Config holds Redis connection settings
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache is a byte-oriented response cache backed by Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Get returns the cached body for key. A miss or a Redis failure both
// report false; failures are logged and otherwise ignored.
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	start := time.Now()
	defer func() {
		metrics.RecordCacheOperation("get", time.Since(start).Seconds())
	}()

	body, err := rc.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		metrics.RecordCacheMiss()
		return nil, false
	}
	metrics.RecordCacheHit()
	return body, true
}

// Set stores body under key with ttl
func (rc *RedisCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	start := time.Now()
	defer func() {
		metrics.RecordCacheOperation("set", time.Since(start).Seconds())
	}()

	if err := rc.client.Set(ctx, keyPrefix+key, body, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}

// Delete removes cached entries
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}
	return rc.client.Del(ctx, prefixed...).Err()
}
