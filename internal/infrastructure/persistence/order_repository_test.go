package persistence

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mayasquare/sales-analytics/internal/domain/order"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&OrderModel{})
	require.NoError(t, err)

	return db
}

func testOrder(id int64, placedAt time.Time, store string, total string) order.Order {
	o := order.Order{
		ID:        id,
		Number:    "1000" + strconv.FormatInt(id, 10),
		Status:    "completed",
		Currency:  "EUR",
		Total:     decimal.RequireFromString(total),
		CreatedAt: placedAt,
		LineItems: []order.LineItem{
			{ProductID: 101, Name: "Ceramic Mug", Quantity: 2, Total: decimal.RequireFromString(total), Price: decimal.RequireFromString("15.00")},
		},
		Shipping: order.Address{City: "Paris", Country: "FR"},
		Billing:  order.Address{City: "Paris", State: "IDF", Country: "FR"},
		Metadata: []order.MetaEntry{{Key: "_store_id", Value: store}},
	}
	if store != "" {
		o.Store = &store
	}
	return o
}

func TestGormOrderRepository_ReplaceAllAndFindAll(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	orders := []order.Order{
		testOrder(2, day.Add(time.Hour), "Lyon", "120.50"),
		testOrder(1, day, "Paris", "60.00"),
		testOrder(3, day.Add(2*time.Hour), "", "39.90"),
	}

	require.NoError(t, repo.ReplaceAll(ctx, orders))

	got, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Oldest first.
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, int64(3), got[2].ID)

	first := got[0]
	assert.Equal(t, "completed", first.Status)
	assert.True(t, first.Total.Equal(decimal.RequireFromString("60.00")))
	require.NotNil(t, first.Store)
	assert.Equal(t, "Paris", *first.Store)
	require.Len(t, first.LineItems, 1)
	assert.Equal(t, int64(101), first.LineItems[0].ProductID)
	assert.Equal(t, "Ceramic Mug", first.LineItems[0].Name)
	assert.Equal(t, int64(2), first.LineItems[0].Quantity)
	assert.Equal(t, "Paris", first.Shipping.City)
	assert.Equal(t, "IDF", first.Billing.State)

	val, ok := first.Meta("_store_id")
	assert.True(t, ok)
	assert.Equal(t, "Paris", val)

	// Unidentified store round-trips as nil.
	assert.Nil(t, got[2].Store)
}

func TestGormOrderRepository_ReplaceAllOverwrites(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.ReplaceAll(ctx, []order.Order{
		testOrder(1, day, "Paris", "60.00"),
		testOrder(2, day, "Lyon", "80.00"),
	}))
	require.NoError(t, repo.ReplaceAll(ctx, []order.Order{
		testOrder(3, day, "Marseille", "40.00"),
	}))

	got, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormOrderRepository_ReplaceAllEmpty(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.ReplaceAll(ctx, []order.Order{testOrder(1, day, "Paris", "60.00")}))
	require.NoError(t, repo.ReplaceAll(ctx, nil))

	got, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGormOrderRepository_Upsert(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, &order.Order{
		ID: 7, Status: "processing", Currency: "EUR",
		Total: decimal.RequireFromString("10.00"), CreatedAt: day,
	}))
	require.NoError(t, repo.Upsert(ctx, &order.Order{
		ID: 7, Status: "completed", Currency: "EUR",
		Total: decimal.RequireFromString("10.00"), CreatedAt: day,
	}))

	got, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "completed", got[0].Status)
}

func TestGormOrderRepository_FindByPeriod(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	jan15 := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	jan16 := time.Date(2026, 1, 16, 10, 0, 0, 0, time.UTC)
	jan17 := time.Date(2026, 1, 17, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.ReplaceAll(ctx, []order.Order{
		testOrder(1, jan15, "Paris", "60.00"),
		testOrder(2, jan16, "Lyon", "80.00"),
		testOrder(3, jan17, "Marseille", "40.00"),
	}))

	got, err := repo.FindByPeriod(ctx,
		time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}
