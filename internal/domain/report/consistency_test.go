package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayasquare/sales-analytics/internal/domain/order"
)

// spreadOrders extends the base fixture with orders in later weeks and
// a second month, so every granularity holds more than one bucket.
func spreadOrders() []order.Order {
	extra := []order.Order{
		{
			ID: 6, Status: "completed", Currency: "EUR",
			Total:     dec("80.00"),
			CreatedAt: time.Date(2026, 1, 30, 16, 0, 0, 0, time.UTC),
			Store:     ptr("Paris Store"),
			LineItems: []order.LineItem{
				{ProductID: 102, Name: "Product B", Quantity: 2, Total: dec("80.00")},
			},
		},
		{
			ID: 7, Status: "completed", Currency: "EUR",
			Total:     dec("140.00"),
			CreatedAt: time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
			Store:     ptr("Lyon Store"),
			LineItems: []order.LineItem{
				{ProductID: 101, Name: "Product A", Quantity: 1, Total: dec("30.00")},
				{ProductID: 104, Name: "Product D", Quantity: 2, Total: dec("110.00")},
			},
		},
	}
	return append(fixtureOrders(), extra...)
}

func reversedOrders(orders []order.Order) []order.Order {
	out := make([]order.Order, len(orders))
	for i := range orders {
		out[len(orders)-1-i] = orders[i]
	}
	return out
}

func sumProductBuckets(buckets map[string]*ProductBucket) ProductBucket {
	var sum ProductBucket
	for _, b := range buckets {
		sum.Quantity += b.Quantity
		sum.Revenue = sum.Revenue.Add(b.Revenue)
		sum.Orders += b.Orders
	}
	return sum
}

func sumStoreBuckets(buckets map[string]*StoreBucket) StoreBucket {
	var sum StoreBucket
	for _, b := range buckets {
		sum.Revenue = sum.Revenue.Add(b.Revenue)
		sum.Orders += b.Orders
	}
	return sum
}

func sumTimeBuckets(buckets map[string]*TimeBucket) TimeBucket {
	var sum TimeBucket
	for _, b := range buckets {
		sum.Revenue = sum.Revenue.Add(b.Revenue)
		sum.Orders += b.Orders
		sum.ItemsSold += b.ItemsSold
	}
	return sum
}

func assertProductBucketSum(t *testing.T, label string, buckets map[string]*ProductBucket, total ProductBucket) {
	t.Helper()
	sum := sumProductBuckets(buckets)
	assert.True(t, sum.Revenue.Equal(total.Revenue), "%s revenue: got %s want %s", label, sum.Revenue, total.Revenue)
	assert.Equal(t, total.Quantity, sum.Quantity, "%s quantity", label)
	assert.Equal(t, total.Orders, sum.Orders, "%s orders", label)
}

// Every granularity partitions the same line items, so daily, weekly
// and monthly bucket sums must all reproduce the running total.
func TestGroupByProduct_BucketSumsMatchTotal(t *testing.T) {
	for _, p := range GroupByProduct(spreadOrders()) {
		assertProductBucketSum(t, p.Name+" daily", p.Daily, p.Total)
		assertProductBucketSum(t, p.Name+" weekly", p.Weekly, p.Total)
		assertProductBucketSum(t, p.Name+" monthly", p.Monthly, p.Total)
	}
}

func TestGroupByStore_BucketSumsMatchTotal(t *testing.T) {
	for _, s := range GroupByStore(spreadOrders()) {
		for label, buckets := range map[string]map[string]*StoreBucket{
			"daily": s.Daily, "weekly": s.Weekly, "monthly": s.Monthly,
		} {
			sum := sumStoreBuckets(buckets)
			assert.True(t, sum.Revenue.Equal(s.TotalRevenue), "%s %s revenue: got %s want %s", s.StoreName, label, sum.Revenue, s.TotalRevenue)
			assert.Equal(t, s.TotalOrders, sum.Orders, "%s %s orders", s.StoreName, label)
		}
	}
}

func TestGroupByTime_BucketSumsMatchTotal(t *testing.T) {
	ts := GroupByTime(spreadOrders())

	// The fixture really spans several weeks and two months.
	require.Len(t, ts.Monthly, 2)
	require.GreaterOrEqual(t, len(ts.Weekly), 3)

	for label, buckets := range map[string]map[string]*TimeBucket{
		"daily": ts.Daily, "weekly": ts.Weekly, "monthly": ts.Monthly,
	} {
		sum := sumTimeBuckets(buckets)
		assert.True(t, sum.Revenue.Equal(ts.Total.Revenue), "%s revenue: got %s want %s", label, sum.Revenue, ts.Total.Revenue)
		assert.Equal(t, ts.Total.Orders, sum.Orders, "%s orders", label)
		assert.Equal(t, ts.Total.ItemsSold, sum.ItemsSold, "%s items", label)
	}
}

// Build is a pure function of its inputs; two runs over the same
// orders must serialize identically.
func TestBuild_Repeatable(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)

	first, err := json.Marshal(Build(spreadOrders(), "EUR", now))
	require.NoError(t, err)
	second, err := json.Marshal(Build(spreadOrders(), "EUR", now))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

// Aggregation results must not depend on the order in which orders
// arrive from the source; only tie-breaking in rankings may.
func TestAggregates_InputOrderInsensitive(t *testing.T) {
	orders := spreadOrders()
	reversed := reversedOrders(orders)

	a := GroupByTime(orders)
	b := GroupByTime(reversed)
	assert.True(t, a.Total.Revenue.Equal(b.Total.Revenue))
	assert.Equal(t, a.Total.Orders, b.Total.Orders)
	assert.Equal(t, a.Total.ItemsSold, b.Total.ItemsSold)
	for label, pair := range map[string][2]map[string]*TimeBucket{
		"daily":   {a.Daily, b.Daily},
		"weekly":  {a.Weekly, b.Weekly},
		"monthly": {a.Monthly, b.Monthly},
	} {
		require.Len(t, pair[1], len(pair[0]), label)
		for key, want := range pair[0] {
			got := pair[1][key]
			require.NotNil(t, got, "%s %s", label, key)
			assert.True(t, want.Revenue.Equal(got.Revenue), "%s %s revenue", label, key)
			assert.Equal(t, want.Orders, got.Orders, "%s %s orders", label, key)
			assert.Equal(t, want.ItemsSold, got.ItemsSold, "%s %s items", label, key)
		}
	}

	byID := make(map[int64]*ProductSales)
	for _, p := range GroupByProduct(reversed) {
		byID[p.ProductID] = p
	}
	for _, p := range GroupByProduct(orders) {
		got := byID[p.ProductID]
		require.NotNil(t, got, "product %d", p.ProductID)
		assert.True(t, p.Total.Revenue.Equal(got.Total.Revenue), "product %d revenue", p.ProductID)
		assert.Equal(t, p.Total.Quantity, got.Total.Quantity, "product %d quantity", p.ProductID)
	}

	byName := make(map[string]decimal.Decimal)
	for _, s := range GroupByStore(reversed) {
		byName[s.StoreName] = s.TotalRevenue
	}
	for _, s := range GroupByStore(orders) {
		got, ok := byName[s.StoreName]
		require.True(t, ok, s.StoreName)
		assert.True(t, s.TotalRevenue.Equal(got), "%s revenue", s.StoreName)
	}
}
