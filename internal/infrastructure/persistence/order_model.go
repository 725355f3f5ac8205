package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mayasquare/sales-analytics/internal/domain/order"
)

// OrderModel is the persistence model for a synchronized order snapshot.
// Monetary amounts are stored as decimal strings so they survive every
// driver unchanged. Structured fields are stored as JSON text columns.
type OrderModel struct {
	OrderID       int64   `gorm:"primaryKey;autoIncrement:false"`
	Number        string  `gorm:"type:varchar(64);index"`
	Status        string  `gorm:"type:varchar(32);index"`
	Currency      string  `gorm:"type:varchar(8)"`
	Total         string  `gorm:"type:varchar(32);not null;default:'0'"`
	TotalTax      string  `gorm:"type:varchar(32);not null;default:'0'"`
	TotalShipping string  `gorm:"type:varchar(32);not null;default:'0'"`
	PlacedAt      time.Time `gorm:"index;not null"`
	PaidAt        *time.Time
	PaymentMethod string  `gorm:"type:varchar(64)"`
	Store         *string `gorm:"type:varchar(128);index"`
	LineItemsJSON string  `gorm:"column:line_items;type:text;not null;default:'[]'"`
	ShippingJSON  string  `gorm:"column:shipping;type:text;not null;default:'{}'"`
	BillingJSON   string  `gorm:"column:billing;type:text;not null;default:'{}'"`
	MetadataJSON  string  `gorm:"column:metadata;type:text;not null;default:'[]'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderModelFromDomain converts a domain order to its persistence model.
func OrderModelFromDomain(o *order.Order) (*OrderModel, error) {
	lineItems, err := json.Marshal(o.LineItems)
	if err != nil {
		return nil, fmt.Errorf("failed to encode line items: %w", err)
	}
	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return nil, fmt.Errorf("failed to encode shipping address: %w", err)
	}
	billing, err := json.Marshal(o.Billing)
	if err != nil {
		return nil, fmt.Errorf("failed to encode billing address: %w", err)
	}
	metadata, err := json.Marshal(o.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	return &OrderModel{
		OrderID:       o.ID,
		Number:        o.Number,
		Status:        o.Status,
		Currency:      o.Currency,
		Total:         o.Total.String(),
		TotalTax:      o.TotalTax.String(),
		TotalShipping: o.TotalShipping.String(),
		PlacedAt:      o.CreatedAt,
		PaidAt:        o.PaidAt,
		PaymentMethod: o.PaymentMethod,
		Store:         o.Store,
		LineItemsJSON: string(lineItems),
		ShippingJSON:  string(shipping),
		BillingJSON:   string(billing),
		MetadataJSON:  string(metadata),
	}, nil
}

// ToDomain converts the persistence model back to a domain order.
func (m *OrderModel) ToDomain() (*order.Order, error) {
	total, err := decimal.NewFromString(m.Total)
	if err != nil {
		return nil, fmt.Errorf("invalid total for order %d: %w", m.OrderID, err)
	}
	totalTax, err := decimal.NewFromString(m.TotalTax)
	if err != nil {
		return nil, fmt.Errorf("invalid tax total for order %d: %w", m.OrderID, err)
	}
	totalShipping, err := decimal.NewFromString(m.TotalShipping)
	if err != nil {
		return nil, fmt.Errorf("invalid shipping total for order %d: %w", m.OrderID, err)
	}

	o := &order.Order{
		ID:            m.OrderID,
		Number:        m.Number,
		Status:        m.Status,
		Currency:      m.Currency,
		Total:         total,
		TotalTax:      totalTax,
		TotalShipping: totalShipping,
		CreatedAt:     m.PlacedAt,
		PaidAt:        m.PaidAt,
		PaymentMethod: m.PaymentMethod,
		Store:         m.Store,
	}

	if m.LineItemsJSON != "" {
		if err := json.Unmarshal([]byte(m.LineItemsJSON), &o.LineItems); err != nil {
			return nil, fmt.Errorf("invalid line items for order %d: %w", m.OrderID, err)
		}
	}
	if m.ShippingJSON != "" {
		if err := json.Unmarshal([]byte(m.ShippingJSON), &o.Shipping); err != nil {
			return nil, fmt.Errorf("invalid shipping address for order %d: %w", m.OrderID, err)
		}
	}
	if m.BillingJSON != "" {
		if err := json.Unmarshal([]byte(m.BillingJSON), &o.Billing); err != nil {
			return nil, fmt.Errorf("invalid billing address for order %d: %w", m.OrderID, err)
		}
	}
	if m.MetadataJSON != "" {
		if err := json.Unmarshal([]byte(m.MetadataJSON), &o.Metadata); err != nil {
			return nil, fmt.Errorf("invalid metadata for order %d: %w", m.OrderID, err)
		}
	}

	return o, nil
}
