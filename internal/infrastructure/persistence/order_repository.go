package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mayasquare/sales-analytics/internal/domain/order"
)

// GormOrderRepository stores order snapshots using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: tx}
}

// orderInsertBatchSize bounds the multi-row INSERT so SQLite's bind
// variable limit is never hit.
const orderInsertBatchSize = 100

// ReplaceAll atomically replaces the stored snapshot with the given
// orders. The previous snapshot is removed in the same transaction.
func (r *GormOrderRepository) ReplaceAll(ctx context.Context, orders []order.Order) error {
	models := make([]*OrderModel, 0, len(orders))
	for i := range orders {
		model, err := OrderModelFromDomain(&orders[i])
		if err != nil {
			return err
		}
		models = append(models, model)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&OrderModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear order snapshot: %w", err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(models, orderInsertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to store order snapshot: %w", err)
		}
		return nil
	})
}

// Upsert inserts or updates a single order by its platform ID.
func (r *GormOrderRepository) Upsert(ctx context.Context, o *order.Order) error {
	model, err := OrderModelFromDomain(o)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert order %d: %w", o.ID, result.Error)
	}
	return nil
}

// FindAll returns every stored order, oldest first.
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]order.Order, error) {
	var models []OrderModel
	if err := r.db.WithContext(ctx).Order("placed_at ASC, order_id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load order snapshot: %w", err)
	}

	orders := make([]order.Order, 0, len(models))
	for i := range models {
		o, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// FindByPeriod returns stored orders placed within [from, to), oldest
// first.
func (r *GormOrderRepository) FindByPeriod(ctx context.Context, from, to time.Time) ([]order.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).
		Where("placed_at >= ? AND placed_at < ?", from, to).
		Order("placed_at ASC, order_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load orders for period: %w", err)
	}

	orders := make([]order.Order, 0, len(models))
	for i := range models {
		o, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// Count returns the number of stored orders.
func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&OrderModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
