package ecommerce

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mayasquare/sales-analytics/internal/domain/order"
)

// Identification methods
const (
	IdentifyByCity     = "city"
	IdentifyByMetadata = "metadata"
	IdentifyByBilling  = "billing"
)

// StoreMapping maps a city or state pattern to a store name. A
// pattern ending in "*" matches any value with that prefix; matching
// is case-insensitive either way.
type StoreMapping struct {
	CityPattern  string
	StatePattern string
	Store        string
}

// StoreIdentifier resolves which physical store an order belongs to,
// based on the shipping city, a metadata field, or the billing state.
type StoreIdentifier struct {
	method        string
	metadataField string
	mappings      []StoreMapping
	logger        *zap.Logger
}

// StoreIdentifierOption is a functional option for StoreIdentifier
type StoreIdentifierOption func(*StoreIdentifier)

// WithIdentifierLogger sets the logger
func WithIdentifierLogger(logger *zap.Logger) StoreIdentifierOption {
	return func(s *StoreIdentifier) {
		s.logger = logger
	}
}

// NewStoreIdentifier creates a store identifier for the given method
func NewStoreIdentifier(method, metadataField string, mappings []StoreMapping, opts ...StoreIdentifierOption) *StoreIdentifier {
	s := &StoreIdentifier{
		method:        method,
		metadataField: metadataField,
		mappings:      mappings,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identify returns the store for an order, or nil when no store can
// be determined. Orders with a nil store still count toward the
// time-only aggregation but are excluded from store views.
func (s *StoreIdentifier) Identify(o *order.Order) *string {
	switch s.method {
	case IdentifyByCity:
		city := o.Shipping.City
		if city == "" {
			city = o.Billing.City
		}
		if city == "" {
			s.logger.Warn("No city found for order", zap.Int64("order_id", o.ID))
			return nil
		}
		if store := s.matchCity(city); store != "" {
			return &store
		}
		s.logger.Warn("No store mapping found for city",
			zap.Int64("order_id", o.ID),
			zap.String("city", city))
		return nil

	case IdentifyByMetadata:
		value, ok := o.Meta(s.metadataField)
		if !ok || value == "" {
			s.logger.Warn("Metadata field missing on order",
				zap.Int64("order_id", o.ID),
				zap.String("field", s.metadataField))
			return nil
		}
		return &value

	case IdentifyByBilling:
		state := o.Billing.State
		if state == "" {
			s.logger.Warn("No billing state found for order", zap.Int64("order_id", o.ID))
			return nil
		}
		if store := s.matchState(state); store != "" {
			return &store
		}
		s.logger.Warn("No store mapping found for state",
			zap.Int64("order_id", o.ID),
			zap.String("state", state))
		return nil

	default:
		s.logger.Error("Unknown store identification method", zap.String("method", s.method))
		return nil
	}
}

func (s *StoreIdentifier) matchCity(city string) string {
	for _, m := range s.mappings {
		if m.CityPattern == "" {
			continue
		}
		if matchPattern(m.CityPattern, city) {
			return m.Store
		}
	}
	return ""
}

func (s *StoreIdentifier) matchState(state string) string {
	for _, m := range s.mappings {
		if m.StatePattern == "" {
			continue
		}
		if matchPattern(m.StatePattern, state) {
			return m.Store
		}
	}
	return ""
}

// matchPattern compares a value against a pattern, treating a
// trailing "*" as a prefix wildcard.
func matchPattern(pattern, value string) bool {
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(strings.ToLower(value), strings.ToLower(prefix))
	}
	return strings.EqualFold(pattern, value)
}
