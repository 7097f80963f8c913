package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration. It returns nil when
// no address is configured.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("REDIS_ADDR not provided; feed cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// FeedCache stores public feed pages in Redis. Keys embed a generation counter so
// invalidation is a single INCR instead of a key scan.
type FeedCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewFeedCache builds a FeedCache; r may be nil, in which case nil is returned.
func NewFeedCache(r *Redis, prefix string, ttl time.Duration) *FeedCache {
	if r == nil || r.Client == nil {
		return nil
	}
	return &FeedCache{client: r.Client, prefix: prefix, ttl: ttl}
}

func (c *FeedCache) versionKey() string {
	return c.prefix + ":version"
}

func (c *FeedCache) version(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, c.versionKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	return version, nil
}

func (c *FeedCache) pageKey(version int64, key string) string {
	return fmt.Sprintf("%s:v%d:%s", c.prefix, version, key)
}

// Get loads a cached page into dest. It reports false on a miss and returns the
// generation it looked in, which a following Set must be given.
func (c *FeedCache) Get(ctx context.Context, key string, dest any) (int64, bool, error) {
	version, err := c.version(ctx)
	if err != nil {
		return 0, false, err
	}
	raw, err := c.client.Get(ctx, c.pageKey(version, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return version, false, nil
		}
		return version, false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return version, false, err
	}
	return version, true, nil
}

// Set stores value under key in the given generation for the configured TTL. A page
// loaded before an Invalidate lands in the old generation and is never read.
func (c *FeedCache) Set(ctx context.Context, version int64, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.pageKey(version, key), b, c.ttl).Err()
}

// Invalidate bumps the generation counter. Old pages expire on their own.
func (c *FeedCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.versionKey()).Err()
}
