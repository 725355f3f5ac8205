package report

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mayasquare/sales-analytics/internal/domain/order"
)

// Limits controls how many entries each ranking keeps.
type Limits struct {
	TopProducts     int
	TopStores       int
	TopCombinations int
}

// DefaultLimits returns the ranking sizes used by the dashboard.
func DefaultLimits() Limits {
	return Limits{
		TopProducts:     DefaultTopProducts,
		TopStores:       DefaultTopStores,
		TopCombinations: DefaultTopCombinations,
	}
}

// Metadata describes the report as a whole.
type Metadata struct {
	GeneratedAt            time.Time `json:"generated_at"`
	Currency               string    `json:"currency"`
	OrderCount             int       `json:"order_count"`
	TotalRevenue           float64   `json:"total_revenue"`
	TotalOrders            int64     `json:"total_orders"`
	TotalItemsSold         int64     `json:"total_items_sold"`
	StoreIdentifiedCount   int       `json:"store_identified_count"`
	StoreUnidentifiedCount int       `json:"store_unidentified_count"`
}

// ProductBucketView is the wire form of a product time bucket.
type ProductBucketView struct {
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
	Orders   int64   `json:"orders"`
}

// ProductView is the wire form of a fully aggregated product.
type ProductView struct {
	ProductID int64                        `json:"product_id"`
	Name      string                       `json:"name"`
	Daily     map[string]ProductBucketView `json:"daily"`
	Weekly    map[string]ProductBucketView `json:"weekly"`
	Monthly   map[string]ProductBucketView `json:"monthly"`
	Total     ProductBucketView            `json:"total"`
}

// ProductPeriodView flattens one granularity of a product: bucket keys
// sit beside product_id and name in the same JSON object.
type ProductPeriodView struct {
	ProductID int64
	Name      string
	Buckets   map[string]ProductBucketView
}

// MarshalJSON writes product_id and name first, then the bucket keys
// in ascending order.
func (v ProductPeriodView) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"product_id":`)
	buf.WriteString(strconv.FormatInt(v.ProductID, 10))
	buf.WriteString(`,"name":`)
	if err := encodeTo(&buf, v.Name); err != nil {
		return nil, err
	}
	if err := encodeBuckets(&buf, v.Buckets); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// StoreProductView is the per-product breakdown inside a store total.
type StoreProductView struct {
	Name     string  `json:"name"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// StoreBucketView is the wire form of a store time bucket. Products is
// always present; period buckets carry it empty while the running
// total holds the actual breakdown.
type StoreBucketView struct {
	Revenue  float64                     `json:"revenue"`
	Orders   int64                       `json:"orders"`
	Products map[string]StoreProductView `json:"products"`
}

// StoreView is the wire form of a fully aggregated store.
type StoreView struct {
	StoreName string                     `json:"store_name"`
	Daily     map[string]StoreBucketView `json:"daily"`
	Weekly    map[string]StoreBucketView `json:"weekly"`
	Monthly   map[string]StoreBucketView `json:"monthly"`
	Total     StoreBucketView            `json:"total"`
}

// StorePeriodView flattens one granularity of a store.
type StorePeriodView struct {
	StoreName string
	Buckets   map[string]StoreBucketView
}

// MarshalJSON writes store_name first, then the bucket keys in
// ascending order.
func (v StorePeriodView) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"store_name":`)
	if err := encodeTo(&buf, v.StoreName); err != nil {
		return nil, err
	}
	if err := encodeBuckets(&buf, v.Buckets); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MatrixEntryView is the wire form of one product-store cell.
type MatrixEntryView struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	StoreName   string  `json:"store_name"`
	Quantity    int64   `json:"quantity"`
	Revenue     float64 `json:"revenue"`
	Orders      int64   `json:"orders"`
}

// TimeBucketView is the wire form of a time-only bucket.
type TimeBucketView struct {
	Revenue   float64 `json:"revenue"`
	Orders    int64   `json:"orders"`
	ItemsSold int64   `json:"items_sold"`
}

// ProductSection groups everything the dashboard needs per product.
type ProductSection struct {
	All         []ProductView       `json:"all"`
	TopProducts []ProductView       `json:"top_products"`
	Daily       []ProductPeriodView `json:"daily"`
	Weekly      []ProductPeriodView `json:"weekly"`
	Monthly     []ProductPeriodView `json:"monthly"`
}

// StoreSection groups everything the dashboard needs per store.
type StoreSection struct {
	All       []StoreView       `json:"all"`
	TopStores []StoreView       `json:"top_stores"`
	Daily     []StorePeriodView `json:"daily"`
	Weekly    []StorePeriodView `json:"weekly"`
	Monthly   []StorePeriodView `json:"monthly"`
}

// MatrixSection holds the product-store matrix.
type MatrixSection struct {
	All             []MatrixEntryView `json:"all"`
	TopCombinations []MatrixEntryView `json:"top_combinations"`
}

// TimeSection holds the time-only aggregation.
type TimeSection struct {
	Daily   map[string]TimeBucketView `json:"daily"`
	Weekly  map[string]TimeBucketView `json:"weekly"`
	Monthly map[string]TimeBucketView `json:"monthly"`
	Total   TimeBucketView            `json:"total"`
}

// DayOverview is the today block of the overview.
type DayOverview struct {
	Date      string  `json:"date"`
	Orders    int64   `json:"orders"`
	Revenue   float64 `json:"revenue"`
	ItemsSold int64   `json:"items_sold"`
}

// WeekOverview is the this_week block of the overview.
type WeekOverview struct {
	Week      string  `json:"week"`
	StartDate string  `json:"start_date"`
	Orders    int64   `json:"orders"`
	Revenue   float64 `json:"revenue"`
	ItemsSold int64   `json:"items_sold"`
}

// MonthOverview is the this_month block of the overview.
type MonthOverview struct {
	Month     string  `json:"month"`
	StartDate string  `json:"start_date"`
	Orders    int64   `json:"orders"`
	Revenue   float64 `json:"revenue"`
	ItemsSold int64   `json:"items_sold"`
}

// Overview holds the current-period snapshots.
type Overview struct {
	Today     DayOverview   `json:"today"`
	ThisWeek  WeekOverview  `json:"this_week"`
	ThisMonth MonthOverview `json:"this_month"`
}

// Report is the complete assembled sales report.
type Report struct {
	Metadata           Metadata       `json:"metadata"`
	SalesByProduct     ProductSection `json:"sales_by_product"`
	SalesByStore       StoreSection   `json:"sales_by_store"`
	ProductStoreMatrix MatrixSection  `json:"product_store_matrix"`
	SalesByTime        TimeSection    `json:"sales_by_time"`
	Overview           Overview       `json:"overview"`
}

// Build runs all aggregation passes over the given orders and
// assembles the report with default ranking sizes. The now argument
// anchors the overview snapshots and the generation timestamp.
func Build(orders []order.Order, currency string, now time.Time) *Report {
	return BuildWithLimits(orders, currency, now, DefaultLimits())
}

// BuildWithLimits is Build with explicit ranking sizes.
func BuildWithLimits(orders []order.Order, currency string, now time.Time, limits Limits) *Report {
	products := GroupByProduct(orders)
	stores := GroupByStore(orders)
	matrix := BuildMatrix(orders)
	times := GroupByTime(orders)

	identified := 0
	for i := range orders {
		if orders[i].HasStore() {
			identified++
		}
	}

	r := &Report{
		Metadata: Metadata{
			GeneratedAt:            now,
			Currency:               currency,
			OrderCount:             len(orders),
			TotalRevenue:           toFloat(times.Total.Revenue),
			TotalOrders:            times.Total.Orders,
			TotalItemsSold:         times.Total.ItemsSold,
			StoreIdentifiedCount:   identified,
			StoreUnidentifiedCount: len(orders) - identified,
		},
		SalesByProduct: ProductSection{
			All:         productViews(products),
			TopProducts: productViews(TopProducts(products, limits.TopProducts)),
			Daily:       productPeriodViews(products, func(p *ProductSales) map[string]*ProductBucket { return p.Daily }),
			Weekly:      productPeriodViews(products, func(p *ProductSales) map[string]*ProductBucket { return p.Weekly }),
			Monthly:     productPeriodViews(products, func(p *ProductSales) map[string]*ProductBucket { return p.Monthly }),
		},
		SalesByStore: StoreSection{
			All:       storeViews(stores),
			TopStores: storeViews(TopStores(stores, limits.TopStores)),
			Daily:     storePeriodViews(stores, func(s *StoreSales) map[string]*StoreBucket { return s.Daily }),
			Weekly:    storePeriodViews(stores, func(s *StoreSales) map[string]*StoreBucket { return s.Weekly }),
			Monthly:   storePeriodViews(stores, func(s *StoreSales) map[string]*StoreBucket { return s.Monthly }),
		},
		ProductStoreMatrix: MatrixSection{
			All:             matrixViews(matrix),
			TopCombinations: matrixViews(TopCombinations(matrix, limits.TopCombinations)),
		},
		SalesByTime: TimeSection{
			Daily:   timeBucketViews(times.Daily),
			Weekly:  timeBucketViews(times.Weekly),
			Monthly: timeBucketViews(times.Monthly),
			Total: TimeBucketView{
				Revenue:   toFloat(times.Total.Revenue),
				Orders:    times.Total.Orders,
				ItemsSold: times.Total.ItemsSold,
			},
		},
		Overview: buildOverview(orders, now),
	}

	return r
}

func buildOverview(orders []order.Order, now time.Time) Overview {
	today := TodaySnapshot(orders, now)
	week := ThisWeekSnapshot(orders, now)
	month := ThisMonthSnapshot(orders, now)

	return Overview{
		Today: DayOverview{
			Date:      today.Date,
			Orders:    today.Orders,
			Revenue:   toFloat(today.Revenue),
			ItemsSold: today.ItemsSold,
		},
		ThisWeek: WeekOverview{
			Week:      week.Week,
			StartDate: week.StartDate,
			Orders:    week.Orders,
			Revenue:   toFloat(week.Revenue),
			ItemsSold: week.ItemsSold,
		},
		ThisMonth: MonthOverview{
			Month:     month.Month,
			StartDate: month.StartDate,
			Orders:    month.Orders,
			Revenue:   toFloat(month.Revenue),
			ItemsSold: month.ItemsSold,
		},
	}
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func productBucketView(b *ProductBucket) ProductBucketView {
	return ProductBucketView{
		Quantity: b.Quantity,
		Revenue:  toFloat(b.Revenue),
		Orders:   b.Orders,
	}
}

func productBucketViews(buckets map[string]*ProductBucket) map[string]ProductBucketView {
	out := make(map[string]ProductBucketView, len(buckets))
	for k, b := range buckets {
		out[k] = productBucketView(b)
	}
	return out
}

func productViews(products []*ProductSales) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, ProductView{
			ProductID: p.ProductID,
			Name:      p.Name,
			Daily:     productBucketViews(p.Daily),
			Weekly:    productBucketViews(p.Weekly),
			Monthly:   productBucketViews(p.Monthly),
			Total:     productBucketView(&p.Total),
		})
	}
	return out
}

func productPeriodViews(products []*ProductSales, pick func(*ProductSales) map[string]*ProductBucket) []ProductPeriodView {
	out := make([]ProductPeriodView, 0, len(products))
	for _, p := range products {
		out = append(out, ProductPeriodView{
			ProductID: p.ProductID,
			Name:      p.Name,
			Buckets:   productBucketViews(pick(p)),
		})
	}
	return out
}

func storeBucketView(b *StoreBucket) StoreBucketView {
	return StoreBucketView{
		Revenue:  toFloat(b.Revenue),
		Orders:   b.Orders,
		Products: map[string]StoreProductView{},
	}
}

func storeBucketViews(buckets map[string]*StoreBucket) map[string]StoreBucketView {
	out := make(map[string]StoreBucketView, len(buckets))
	for k, b := range buckets {
		out[k] = storeBucketView(b)
	}
	return out
}

func storeTotalView(s *StoreSales) StoreBucketView {
	products := make(map[string]StoreProductView, len(s.Products))
	for id, sp := range s.Products {
		products[strconv.FormatInt(id, 10)] = StoreProductView{
			Name:     sp.Name,
			Quantity: sp.Quantity,
			Revenue:  toFloat(sp.Revenue),
		}
	}
	return StoreBucketView{
		Revenue:  toFloat(s.TotalRevenue),
		Orders:   s.TotalOrders,
		Products: products,
	}
}

func storeViews(stores []*StoreSales) []StoreView {
	out := make([]StoreView, 0, len(stores))
	for _, s := range stores {
		out = append(out, StoreView{
			StoreName: s.StoreName,
			Daily:     storeBucketViews(s.Daily),
			Weekly:    storeBucketViews(s.Weekly),
			Monthly:   storeBucketViews(s.Monthly),
			Total:     storeTotalView(s),
		})
	}
	return out
}

func storePeriodViews(stores []*StoreSales, pick func(*StoreSales) map[string]*StoreBucket) []StorePeriodView {
	out := make([]StorePeriodView, 0, len(stores))
	for _, s := range stores {
		out = append(out, StorePeriodView{
			StoreName: s.StoreName,
			Buckets:   storeBucketViews(pick(s)),
		})
	}
	return out
}

func matrixViews(entries []*MatrixEntry) []MatrixEntryView {
	out := make([]MatrixEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, MatrixEntryView{
			ProductID:   e.ProductID,
			ProductName: e.ProductName,
			StoreName:   e.StoreName,
			Quantity:    e.Quantity,
			Revenue:     toFloat(e.Revenue),
			Orders:      e.Orders,
		})
	}
	return out
}

func timeBucketViews(buckets map[string]*TimeBucket) map[string]TimeBucketView {
	out := make(map[string]TimeBucketView, len(buckets))
	for k, b := range buckets {
		out[k] = TimeBucketView{
			Revenue:   toFloat(b.Revenue),
			Orders:    b.Orders,
			ItemsSold: b.ItemsSold,
		}
	}
	return out
}

// encodeTo writes the JSON encoding of v without a trailing newline.
func encodeTo(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// encodeBuckets appends ",<key>:<bucket>" pairs in ascending key order.
func encodeBuckets[T any](buf *bytes.Buffer, buckets map[string]T) error {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		buf.WriteByte(',')
		if err := encodeTo(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encodeTo(buf, buckets[k]); err != nil {
			return err
		}
	}
	return nil
}
