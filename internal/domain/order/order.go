package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single product line on an order.
type LineItem struct {
	ProductID   int64           `json:"product_id"`
	VariationID int64           `json:"variation_id,omitempty"`
	Name        string          `json:"name"`
	Quantity    int64           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Total       decimal.Decimal `json:"total"`
	Price       decimal.Decimal `json:"price"`
}

// Address holds a shipping or billing address.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
}

// MetaEntry is a key/value pair attached to an order by the platform.
type MetaEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Order is a normalized sales order pulled from a platform or file.
// Store is nil when no physical store could be identified for the order.
type Order struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	Status        string          `json:"status"`
	Currency      string          `json:"currency"`
	Total         decimal.Decimal `json:"total"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalShipping decimal.Decimal `json:"total_shipping"`
	CreatedAt     time.Time       `json:"date_created"`
	PaidAt        *time.Time      `json:"date_paid,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Store         *string         `json:"store"`
	LineItems     []LineItem      `json:"line_items"`
	Shipping      Address         `json:"shipping"`
	Billing       Address         `json:"billing"`
	Metadata      []MetaEntry     `json:"meta_data,omitempty"`
}

// HasStore reports whether a store was identified for this order.
func (o *Order) HasStore() bool {
	return o.Store != nil && *o.Store != ""
}

// StoreName returns the identified store name, or "" when unidentified.
func (o *Order) StoreName() string {
	if o.Store == nil {
		return ""
	}
	return *o.Store
}

// ItemsSold returns the total quantity across all line items.
func (o *Order) ItemsSold() int64 {
	var n int64
	for _, item := range o.LineItems {
		n += item.Quantity
	}
	return n
}

// Meta returns the value of the named metadata entry, if present.
func (o *Order) Meta(key string) (string, bool) {
	for _, m := range o.Metadata {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}
