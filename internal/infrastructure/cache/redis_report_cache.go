package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// defaultReportKey is the Redis key holding the report snapshot
const defaultReportKey = "sales:report"

// RedisReportCache implements ReportCache on Redis. Suitable for
// distributed deployments where multiple instances share one report.
// The TTL is enforced by Redis key expiry.
type RedisReportCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisReportCacheOption is a functional option for the cache
type RedisReportCacheOption func(*RedisReportCache)

// WithRedisTTL sets the freshness window
func WithRedisTTL(ttl time.Duration) RedisReportCacheOption {
	return func(c *RedisReportCache) {
		c.ttl = ttl
	}
}

// WithRedisLogger sets the logger
func WithRedisLogger(logger *zap.Logger) RedisReportCacheOption {
	return func(c *RedisReportCache) {
		c.logger = logger
	}
}

// WithRedisKey overrides the cache key
func WithRedisKey(key string) RedisReportCacheOption {
	return func(c *RedisReportCache) {
		c.key = key
	}
}

// NewRedisReportCache creates a Redis-backed report cache and verifies
// the connection.
func NewRedisReportCache(cfg RedisConfig, opts ...RedisReportCacheOption) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisReportCacheWithClient(client, opts...), nil
}

// NewRedisReportCacheWithClient creates a cache with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisReportCacheWithClient(client *redis.Client, opts ...RedisReportCacheOption) *RedisReportCache {
	c := &RedisReportCache{
		client: client,
		key:    defaultReportKey,
		ttl:    DefaultReportTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot, or nil when the key is absent or
// has expired.
func (c *RedisReportCache) Get(ctx context.Context) (*Snapshot, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Report cache miss")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}

	c.logger.Debug("Report cache hit", zap.Time("fetched_at", snap.FetchedAt))
	return &snap, nil
}

// Set stores a snapshot with the configured TTL
func (c *RedisReportCache) Set(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}

	c.logger.Debug("Cached report",
		zap.Time("fetched_at", snap.FetchedAt),
		zap.Duration("ttl", c.ttl))
	return nil
}

// Invalidate drops the cached snapshot
func (c *RedisReportCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached report: %w", err)
	}
	c.logger.Debug("Invalidated report cache")
	return nil
}

// Close closes the Redis client
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

// Ensure RedisReportCache implements ReportCache
var _ ReportCache = (*RedisReportCache)(nil)
