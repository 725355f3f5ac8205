package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mayasquare/sales-analytics/internal/domain/order"
	"github.com/mayasquare/sales-analytics/internal/domain/report"
	"github.com/mayasquare/sales-analytics/internal/domain/shared"
	"github.com/mayasquare/sales-analytics/internal/infrastructure/cache"
)

// OrderSource pulls the full set of orders from a sales channel.
type OrderSource interface {
	PullOrders(ctx context.Context) ([]order.Order, error)
}

// SourceFunc adapts a function to the OrderSource interface.
type SourceFunc func(ctx context.Context) ([]order.Order, error)

// PullOrders calls f.
func (f SourceFunc) PullOrders(ctx context.Context) ([]order.Order, error) {
	return f(ctx)
}

// OrderRepository persists the most recent order snapshot.
type OrderRepository interface {
	ReplaceAll(ctx context.Context, orders []order.Order) error
	FindAll(ctx context.Context) ([]order.Order, error)
}

// Service assembles sales reports from an order source, keeping the
// assembled report in a cache until it goes stale.
type Service struct {
	source   OrderSource
	repo     OrderRepository
	cache    cache.ReportCache
	logger   *zap.Logger
	currency string
	limits   report.Limits
	now      func() time.Time

	// refreshMu serializes report rebuilds so concurrent requests
	// behind a cold cache trigger a single pull.
	refreshMu sync.Mutex
}

// ServiceOption is a functional option for the service
type ServiceOption func(*Service)

// WithRepository enables order snapshot persistence
func WithRepository(repo OrderRepository) ServiceOption {
	return func(s *Service) {
		s.repo = repo
	}
}

// WithServiceLogger sets the logger
func WithServiceLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCurrency sets the report currency code
func WithCurrency(currency string) ServiceOption {
	return func(s *Service) {
		s.currency = currency
	}
}

// WithLimits sets the ranking sizes
func WithLimits(limits report.Limits) ServiceOption {
	return func(s *Service) {
		s.limits = limits
	}
}

// WithClock replaces the clock, for tests
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an analytics service
func NewService(source OrderSource, reportCache cache.ReportCache, opts ...ServiceOption) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: order source is required", shared.ErrInvalidInput)
	}
	if reportCache == nil {
		return nil, fmt.Errorf("%w: report cache is required", shared.ErrInvalidInput)
	}

	s := &Service{
		source:   source,
		cache:    reportCache,
		logger:   zap.NewNop(),
		currency: "EUR",
		limits:   report.DefaultLimits(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetReport returns the current sales report. A fresh cached report is
// returned as-is; otherwise orders are pulled and the report rebuilt.
// The second return value reports whether the cache served the request.
func (s *Service) GetReport(ctx context.Context) (*report.Report, bool, error) {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("Report cache read failed, rebuilding", zap.Error(err))
	} else if snap != nil {
		return snap.Report, true, nil
	}

	rep, err := s.rebuild(ctx)
	if err != nil {
		return nil, false, err
	}
	return rep, false, nil
}

// Refresh discards any cached report and rebuilds it from the source.
func (s *Service) Refresh(ctx context.Context) (*report.Report, error) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Report cache invalidation failed", zap.Error(err))
	}
	return s.rebuild(ctx)
}

func (s *Service) rebuild(ctx context.Context) (*report.Report, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Another request may have rebuilt while we waited for the lock.
	if snap, err := s.cache.Get(ctx); err == nil && snap != nil {
		return snap.Report, nil
	}

	start := s.now()
	orders, err := s.source.PullOrders(ctx)
	if err != nil {
		s.logger.Error("Failed to pull orders", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", shared.ErrReportNotReady, err)
	}

	rep := report.BuildWithLimits(orders, s.currency, s.now(), s.limits)

	s.logger.Info("Rebuilt sales report",
		zap.Int("order_count", len(orders)),
		zap.Duration("elapsed", s.now().Sub(start)))

	if s.repo != nil {
		if err := s.repo.ReplaceAll(ctx, orders); err != nil {
			s.logger.Warn("Failed to persist order snapshot", zap.Error(err))
		}
	}

	if err := s.cache.Set(ctx, &cache.Snapshot{Report: rep, FetchedAt: s.now()}); err != nil {
		s.logger.Warn("Failed to cache report", zap.Error(err))
	}

	return rep, nil
}

// BuildFromStored assembles a report from the persisted order snapshot
// without contacting the source. Fails when persistence is disabled.
func (s *Service) BuildFromStored(ctx context.Context) (*report.Report, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: order persistence is not enabled", shared.ErrInvalidState)
	}
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildWithLimits(orders, s.currency, s.now(), s.limits), nil
}
