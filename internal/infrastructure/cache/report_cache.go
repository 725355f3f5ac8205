package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mayasquare/sales-analytics/internal/domain/report"
)

// DefaultReportTTL is how long an assembled report stays fresh.
const DefaultReportTTL = 5 * time.Minute

// Snapshot is a cached report together with the moment it was built.
type Snapshot struct {
	Report    *report.Report `json:"report"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// IsStale reports whether the snapshot is older than ttl at the given
// time.
func (s *Snapshot) IsStale(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.FetchedAt) >= ttl
}

// ReportCache stores the most recent report snapshot. Get returns
// (nil, nil) on a miss or when the entry is stale.
type ReportCache interface {
	Get(ctx context.Context) (*Snapshot, error)
	Set(ctx context.Context, snap *Snapshot) error
	Invalidate(ctx context.Context) error
	Close() error
}

// MemoryReportCache implements ReportCache with in-process storage.
// Suitable for single-instance deployments.
type MemoryReportCache struct {
	mu     sync.RWMutex
	entry  *Snapshot
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// MemoryReportCacheOption is a functional option for the cache
type MemoryReportCacheOption func(*MemoryReportCache)

// WithMemoryTTL sets the freshness window
func WithMemoryTTL(ttl time.Duration) MemoryReportCacheOption {
	return func(c *MemoryReportCache) {
		c.ttl = ttl
	}
}

// WithMemoryLogger sets the logger
func WithMemoryLogger(logger *zap.Logger) MemoryReportCacheOption {
	return func(c *MemoryReportCache) {
		c.logger = logger
	}
}

// WithMemoryClock replaces the clock, for tests
func WithMemoryClock(now func() time.Time) MemoryReportCacheOption {
	return func(c *MemoryReportCache) {
		c.now = now
	}
}

// NewMemoryReportCache creates an in-memory report cache
func NewMemoryReportCache(opts ...MemoryReportCacheOption) *MemoryReportCache {
	c := &MemoryReportCache{
		ttl:    DefaultReportTTL,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot, or nil when absent or stale.
// Stale entries are evicted on read.
func (c *MemoryReportCache) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	entry := c.entry
	c.mu.RUnlock()

	if entry == nil {
		c.logger.Debug("Report cache miss")
		return nil, nil
	}
	if entry.IsStale(c.now(), c.ttl) {
		c.logger.Debug("Report cache entry expired",
			zap.Time("fetched_at", entry.FetchedAt))
		c.mu.Lock()
		if c.entry == entry {
			c.entry = nil
		}
		c.mu.Unlock()
		return nil, nil
	}

	c.logger.Debug("Report cache hit", zap.Time("fetched_at", entry.FetchedAt))
	return entry, nil
}

// Set stores a snapshot
func (c *MemoryReportCache) Set(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return nil
	}
	c.mu.Lock()
	c.entry = snap
	c.mu.Unlock()
	c.logger.Debug("Cached report", zap.Time("fetched_at", snap.FetchedAt))
	return nil
}

// Invalidate drops the cached snapshot
func (c *MemoryReportCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
	c.logger.Debug("Invalidated report cache")
	return nil
}

// Close releases resources; a no-op for the in-memory cache
func (c *MemoryReportCache) Close() error {
	return nil
}

// Ensure MemoryReportCache implements ReportCache
var _ ReportCache = (*MemoryReportCache)(nil)
