package report

import (
	"github.com/shopspring/decimal"
)

// ProductBucket accumulates line-item level figures for one product in
// one time bucket. Orders counts line-item occurrences, not distinct
// orders: a product appearing on two lines of the same order counts
// twice.
type ProductBucket struct {
	Quantity int64
	Revenue  decimal.Decimal
	Orders   int64
}

// ProductSales holds the full aggregation for a single product.
type ProductSales struct {
	ProductID int64
	Name      string
	Daily     map[string]*ProductBucket
	Weekly    map[string]*ProductBucket
	Monthly   map[string]*ProductBucket
	Total     ProductBucket
}

// StoreBucket accumulates order-level figures for one store in one
// time bucket.
type StoreBucket struct {
	Revenue decimal.Decimal
	Orders  int64
}

// StoreProduct is the per-product breakdown inside a store's running
// total.
type StoreProduct struct {
	Name     string
	Quantity int64
	Revenue  decimal.Decimal
}

// StoreSales holds the full aggregation for a single store. Only the
// running total carries a product breakdown; period buckets do not.
type StoreSales struct {
	StoreName    string
	Daily        map[string]*StoreBucket
	Weekly       map[string]*StoreBucket
	Monthly      map[string]*StoreBucket
	TotalRevenue decimal.Decimal
	TotalOrders  int64
	Products     map[int64]*StoreProduct
	productOrder []int64
}

// ProductIDs returns the product IDs in first-seen order.
func (s *StoreSales) ProductIDs() []int64 {
	return s.productOrder
}

// MatrixEntry accumulates figures for one product sold at one store.
// Orders counts line-item occurrences, matching ProductBucket.
type MatrixEntry struct {
	ProductID   int64
	ProductName string
	StoreName   string
	Quantity    int64
	Revenue     decimal.Decimal
	Orders      int64
}

// TimeBucket accumulates order-level figures for one time bucket
// across all stores and products.
type TimeBucket struct {
	Revenue   decimal.Decimal
	Orders    int64
	ItemsSold int64
}

// TimeSales holds the time-only aggregation used by the timeline view.
type TimeSales struct {
	Daily   map[string]*TimeBucket
	Weekly  map[string]*TimeBucket
	Monthly map[string]*TimeBucket
	Total   TimeBucket
}
