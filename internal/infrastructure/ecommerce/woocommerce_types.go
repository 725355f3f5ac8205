package ecommerce

import (
	"github.com/shopspring/decimal"
)

// Wire types for the WooCommerce REST API v3. Monetary amounts arrive
// as strings and are parsed with ParseDecimal.

type wcOrder struct {
	ID            int64         `json:"id"`
	Number        string        `json:"number"`
	Status        string        `json:"status"`
	Currency      string        `json:"currency"`
	Total         string        `json:"total"`
	TotalTax      string        `json:"total_tax"`
	ShippingTotal string        `json:"shipping_total"`
	DateCreated   string        `json:"date_created"`
	DatePaid      string        `json:"date_paid"`
	PaymentMethod string        `json:"payment_method"`
	Shipping      wcAddress     `json:"shipping"`
	Billing       wcAddress     `json:"billing"`
	LineItems     []wcLineItem  `json:"line_items"`
	MetaData      []wcMetaEntry `json:"meta_data"`
}

type wcLineItem struct {
	ProductID   int64  `json:"product_id"`
	VariationID int64  `json:"variation_id"`
	Name        string `json:"name"`
	Quantity    int64  `json:"quantity"`
	Subtotal    string `json:"subtotal"`
	Total       string `json:"total"`
	Price       any    `json:"price"` // number or string depending on store version
}

type wcAddress struct {
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

type wcMetaEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// ParseDecimal converts an amount value from the API into a decimal.
// Unparseable or empty values become zero.
func ParseDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case string:
		if val == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(val)
	case int64:
		return decimal.NewFromInt(val)
	case int:
		return decimal.NewFromInt(int64(val))
	default:
		return decimal.Zero
	}
}
