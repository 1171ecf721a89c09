package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

const (
	// probeTimeout bounds the PING a readiness check may issue.
	probeTimeout = 500 * time.Millisecond
	// probeInterval is how long a readiness verdict is trusted before the
	// backend is probed again. Keeps a down Redis from adding a PING round
	// trip to every request.
	probeInterval = 5 * time.Second
)

// RedisCache implements Cache on a Redis backend. It degrades to pass-through
// when Redis is unreachable: Ready flips to false and every operation becomes
// a miss or a no-op until a later probe succeeds.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger

	mu        sync.Mutex
	ready     bool
	lastProbe time.Time
}

// NewRedisCache creates a Redis-backed cache. Unlike most constructors it does
// not fail when Redis is down; the availability gate simply starts closed.
func NewRedisCache(cfg RedisConfig, logger *zap.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisCacheWithClient(client, logger)
}

// NewRedisCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisCacheWithClient(client *redis.Client, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{
		client: client,
		logger: logger,
	}
}

// Ready probes the backend at most once per probeInterval and answers from the
// cached verdict in between.
func (c *RedisCache) Ready(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.lastProbe) < probeInterval {
		return c.ready
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	err := c.client.Ping(probeCtx).Err()
	wasReady := c.ready
	c.ready = err == nil
	c.lastProbe = time.Now()

	if c.ready != wasReady {
		if c.ready {
			c.logger.Info("Cache backend is reachable, caching enabled")
		} else {
			c.logger.Warn("Cache backend unreachable, degrading to pass-through", zap.Error(err))
		}
	}

	return c.ready
}

// Get returns the cached value, treating any backend failure as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Cache get failed, treating as miss",
				zap.String("key", key),
				zap.Error(err))
		}
		return "", false
	}
	return val, true
}

// Set stores the value best-effort.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("Cache set failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

// Delete removes the keys best-effort.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Cache invalidation failed",
			zap.Strings("keys", keys),
			zap.Error(err))
	}
}

// Close closes the underlying Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
