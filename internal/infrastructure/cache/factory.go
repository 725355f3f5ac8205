package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mayasquare/sales-analytics/internal/infrastructure/config"
)

// ReportCacheFactory creates report caches based on configuration
type ReportCacheFactory struct {
	cacheConfig config.CacheConfig
	redisConfig config.RedisConfig
	logger      *zap.Logger
}

// ReportCacheFactoryOption is a functional option for the factory
type ReportCacheFactoryOption func(*ReportCacheFactory)

// WithFactoryLogger sets the logger for the factory and the caches it
// creates
func WithFactoryLogger(logger *zap.Logger) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.logger = logger
	}
}

// NewReportCacheFactory creates a new factory
func NewReportCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...ReportCacheFactoryOption) *ReportCacheFactory {
	f := &ReportCacheFactory{
		cacheConfig: cacheCfg,
		redisConfig: redisCfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds the cache selected by cache.backend
func (f *ReportCacheFactory) Create() (ReportCache, error) {
	switch f.cacheConfig.Backend {
	case "redis":
		cache, err := NewRedisReportCache(RedisConfig{
			Host:     f.redisConfig.Host,
			Port:     f.redisConfig.Port,
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		},
			WithRedisTTL(f.cacheConfig.TTL),
			WithRedisLogger(f.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis report cache: %w", err)
		}
		f.logger.Info("Using Redis report cache")
		return cache, nil

	case "memory", "":
		f.logger.Info("Using in-memory report cache")
		return NewMemoryReportCache(
			WithMemoryTTL(f.cacheConfig.TTL),
			WithMemoryLogger(f.logger),
		), nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", f.cacheConfig.Backend)
	}
}
