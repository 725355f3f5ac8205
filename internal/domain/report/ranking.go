package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Default ranking sizes for the assembled report.
const (
	DefaultTopProducts     = 10
	DefaultTopStores       = 10
	DefaultTopCombinations = 20
)

// TopN returns the first n items sorted by descending revenue. The
// sort is stable, so items with equal revenue keep their first-seen
// order. The input slice is not modified.
func TopN[T any](items []T, n int, revenue func(T) decimal.Decimal) []T {
	ranked := make([]T, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		return revenue(ranked[i]).GreaterThan(revenue(ranked[j]))
	})

	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// TopProducts ranks products by total revenue.
func TopProducts(products []*ProductSales, n int) []*ProductSales {
	return TopN(products, n, func(p *ProductSales) decimal.Decimal {
		return p.Total.Revenue
	})
}

// TopStores ranks stores by total revenue.
func TopStores(stores []*StoreSales, n int) []*StoreSales {
	return TopN(stores, n, func(s *StoreSales) decimal.Decimal {
		return s.TotalRevenue
	})
}

// TopCombinations ranks product-store cells by revenue.
func TopCombinations(entries []*MatrixEntry, n int) []*MatrixEntry {
	return TopN(entries, n, func(e *MatrixEntry) decimal.Decimal {
		return e.Revenue
	})
}
