package report

import (
	"fmt"

	"github.com/mayasquare/sales-analytics/internal/domain/order"
)

// GroupByProduct aggregates line items across all orders into
// per-product daily, weekly and monthly buckets plus a running total.
// Products are returned in first-seen order; the first non-empty name
// observed for a product ID wins.
func GroupByProduct(orders []order.Order) []*ProductSales {
	index := make(map[int64]*ProductSales)
	result := make([]*ProductSales, 0)

	for i := range orders {
		o := &orders[i]
		dayKey := DayKey(o.CreatedAt)
		weekKey := WeekKey(o.CreatedAt)
		monthKey := MonthKey(o.CreatedAt)

		for _, item := range o.LineItems {
			p, ok := index[item.ProductID]
			if !ok {
				name := item.Name
				if name == "" {
					name = fmt.Sprintf("Product %d", item.ProductID)
				}
				p = &ProductSales{
					ProductID: item.ProductID,
					Name:      name,
					Daily:     make(map[string]*ProductBucket),
					Weekly:    make(map[string]*ProductBucket),
					Monthly:   make(map[string]*ProductBucket),
				}
				index[item.ProductID] = p
				result = append(result, p)
			}

			addToProductBucket(p.Daily, dayKey, &item)
			addToProductBucket(p.Weekly, weekKey, &item)
			addToProductBucket(p.Monthly, monthKey, &item)

			p.Total.Quantity += item.Quantity
			p.Total.Revenue = p.Total.Revenue.Add(item.Total)
			p.Total.Orders++
		}
	}

	return result
}

func addToProductBucket(buckets map[string]*ProductBucket, key string, item *order.LineItem) {
	b, ok := buckets[key]
	if !ok {
		b = &ProductBucket{}
		buckets[key] = b
	}
	b.Quantity += item.Quantity
	b.Revenue = b.Revenue.Add(item.Total)
	b.Orders++
}

// GroupByStore aggregates orders into per-store buckets. Orders
// without an identified store are skipped entirely. Revenue is taken
// from the order total, not from line items, and only the running
// total carries a per-product breakdown.
func GroupByStore(orders []order.Order) []*StoreSales {
	index := make(map[string]*StoreSales)
	result := make([]*StoreSales, 0)

	for i := range orders {
		o := &orders[i]
		if !o.HasStore() {
			continue
		}

		dayKey := DayKey(o.CreatedAt)
		weekKey := WeekKey(o.CreatedAt)
		monthKey := MonthKey(o.CreatedAt)

		name := o.StoreName()
		s, ok := index[name]
		if !ok {
			s = &StoreSales{
				StoreName: name,
				Daily:     make(map[string]*StoreBucket),
				Weekly:    make(map[string]*StoreBucket),
				Monthly:   make(map[string]*StoreBucket),
				Products:  make(map[int64]*StoreProduct),
			}
			index[name] = s
			result = append(result, s)
		}

		addToStoreBucket(s.Daily, dayKey, o)
		addToStoreBucket(s.Weekly, weekKey, o)
		addToStoreBucket(s.Monthly, monthKey, o)

		s.TotalRevenue = s.TotalRevenue.Add(o.Total)
		s.TotalOrders++

		for _, item := range o.LineItems {
			sp, ok := s.Products[item.ProductID]
			if !ok {
				sp = &StoreProduct{Name: item.Name}
				s.Products[item.ProductID] = sp
				s.productOrder = append(s.productOrder, item.ProductID)
			}
			sp.Quantity += item.Quantity
			sp.Revenue = sp.Revenue.Add(item.Total)
		}
	}

	return result
}

func addToStoreBucket(buckets map[string]*StoreBucket, key string, o *order.Order) {
	b, ok := buckets[key]
	if !ok {
		b = &StoreBucket{}
		buckets[key] = b
	}
	b.Revenue = b.Revenue.Add(o.Total)
	b.Orders++
}

type matrixKey struct {
	productID int64
	store     string
}

// BuildMatrix aggregates line items into product-by-store cells.
// Orders without an identified store are skipped.
func BuildMatrix(orders []order.Order) []*MatrixEntry {
	index := make(map[matrixKey]*MatrixEntry)
	result := make([]*MatrixEntry, 0)

	for i := range orders {
		o := &orders[i]
		if !o.HasStore() {
			continue
		}

		store := o.StoreName()
		for _, item := range o.LineItems {
			key := matrixKey{productID: item.ProductID, store: store}
			e, ok := index[key]
			if !ok {
				e = &MatrixEntry{
					ProductID:   item.ProductID,
					ProductName: item.Name,
					StoreName:   store,
				}
				index[key] = e
				result = append(result, e)
			}
			e.Quantity += item.Quantity
			e.Revenue = e.Revenue.Add(item.Total)
			e.Orders++
		}
	}

	return result
}

// GroupByTime aggregates orders into time-only buckets for the
// timeline view, including orders without an identified store.
func GroupByTime(orders []order.Order) *TimeSales {
	ts := &TimeSales{
		Daily:   make(map[string]*TimeBucket),
		Weekly:  make(map[string]*TimeBucket),
		Monthly: make(map[string]*TimeBucket),
	}

	for i := range orders {
		o := &orders[i]
		dayKey := DayKey(o.CreatedAt)
		weekKey := WeekKey(o.CreatedAt)
		monthKey := MonthKey(o.CreatedAt)
		items := o.ItemsSold()

		addToTimeBucket(ts.Daily, dayKey, o, items)
		addToTimeBucket(ts.Weekly, weekKey, o, items)
		addToTimeBucket(ts.Monthly, monthKey, o, items)

		ts.Total.Revenue = ts.Total.Revenue.Add(o.Total)
		ts.Total.Orders++
		ts.Total.ItemsSold += items
	}

	return ts
}

func addToTimeBucket(buckets map[string]*TimeBucket, key string, o *order.Order, items int64) {
	b, ok := buckets[key]
	if !ok {
		b = &TimeBucket{}
		buckets[key] = b
	}
	b.Revenue = b.Revenue.Add(o.Total)
	b.Orders++
	b.ItemsSold += items
}
