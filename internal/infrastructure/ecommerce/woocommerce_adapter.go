package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mayasquare/sales-analytics/internal/domain/order"
)

// maxResponseSize is the maximum allowed response size from the
// WooCommerce API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Adapter errors
var (
	ErrSourceUnavailable = errors.New("woocommerce: API is unreachable")
	ErrRequestFailed     = errors.New("woocommerce: API request failed")
	ErrInvalidResponse   = errors.New("woocommerce: invalid API response")
	ErrAuthFailed        = errors.New("woocommerce: authentication failed, key may lack orders:read permission")
)

// Timestamp layouts the API is known to emit. date_created has no
// zone suffix and is expressed in the store's local time.
var wcTimeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// WooCommerceAdapter pulls orders from the WooCommerce REST API,
// normalizes them into domain orders and attaches a store to each.
type WooCommerceAdapter struct {
	config     *WooCommerceConfig
	httpClient *http.Client
	identifier *StoreIdentifier
	logger     *zap.Logger
}

// WooCommerceAdapterOption is a functional option for the adapter
type WooCommerceAdapterOption func(*WooCommerceAdapter)

// WithAdapterLogger sets the logger
func WithAdapterLogger(logger *zap.Logger) WooCommerceAdapterOption {
	return func(a *WooCommerceAdapter) {
		a.logger = logger
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) WooCommerceAdapterOption {
	return func(a *WooCommerceAdapter) {
		a.httpClient = client
	}
}

// NewWooCommerceAdapter creates a new adapter with the given
// configuration and store identifier
func NewWooCommerceAdapter(config *WooCommerceConfig, identifier *StoreIdentifier, opts ...WooCommerceAdapterOption) (*WooCommerceAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &WooCommerceAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.timeout()},
		identifier: identifier,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// PullRequest bounds an order pull. Zero times mean no bound.
type PullRequest struct {
	After  time.Time
	Before time.Time
}

// PullOrders fetches all matching orders page by page until a short
// page signals the end. Orders whose creation timestamp cannot be
// parsed are dropped with a warning.
func (a *WooCommerceAdapter) PullOrders(ctx context.Context, req PullRequest) ([]order.Order, error) {
	perPage := a.config.perPage()
	var all []order.Order

	for page := 1; ; page++ {
		a.logger.Debug("Fetching orders page", zap.Int("page", page))

		batch, err := a.fetchPage(ctx, req, page, perPage)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			o, ok := a.convertOrder(&batch[i])
			if !ok {
				continue
			}
			all = append(all, o)
		}

		if len(batch) < perPage {
			break
		}
	}

	a.logger.Info("Fetched orders from WooCommerce", zap.Int("count", len(all)))
	return all, nil
}

// fetchPage retrieves one page of orders
func (a *WooCommerceAdapter) fetchPage(ctx context.Context, req PullRequest, page, perPage int) ([]wcOrder, error) {
	endpoint, err := url.Parse(a.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: invalid base URL: %w", err)
	}
	endpoint = endpoint.JoinPath("wp-json", "wc", "v3", "orders")

	query := endpoint.Query()
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("status", joinStatuses(a.config.statuses()))
	if !req.After.IsZero() {
		query.Set("after", req.After.Format(time.RFC3339))
	}
	if !req.Before.IsZero() {
		query.Set("before", req.Before.Format(time.RFC3339))
	}
	endpoint.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to create request: %w", err)
	}
	httpReq.SetBasicAuth(a.config.ConsumerKey, a.config.ConsumerSecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuthFailed
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	}

	var orders []wcOrder
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return orders, nil
}

// convertOrder maps an API order onto the domain model. The second
// return value is false when the order must be dropped.
func (a *WooCommerceAdapter) convertOrder(wc *wcOrder) (order.Order, bool) {
	createdAt, err := parseWCTime(wc.DateCreated)
	if err != nil {
		a.logger.Warn("Dropping order with unparseable creation date",
			zap.Int64("order_id", wc.ID),
			zap.String("date_created", wc.DateCreated))
		return order.Order{}, false
	}

	o := order.Order{
		ID:            wc.ID,
		Number:        wc.Number,
		Status:        wc.Status,
		Currency:      wc.Currency,
		Total:         ParseDecimal(wc.Total),
		TotalTax:      ParseDecimal(wc.TotalTax),
		TotalShipping: ParseDecimal(wc.ShippingTotal),
		CreatedAt:     createdAt,
		PaymentMethod: wc.PaymentMethod,
		Shipping:      convertAddress(&wc.Shipping),
		Billing:       convertAddress(&wc.Billing),
		LineItems:     make([]order.LineItem, 0, len(wc.LineItems)),
	}

	if wc.DatePaid != "" {
		if paidAt, err := parseWCTime(wc.DatePaid); err == nil {
			o.PaidAt = &paidAt
		}
	}

	for _, item := range wc.LineItems {
		o.LineItems = append(o.LineItems, order.LineItem{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			Subtotal:    ParseDecimal(item.Subtotal),
			Total:       ParseDecimal(item.Total),
			Price:       ParseDecimal(item.Price),
		})
	}

	for _, m := range wc.MetaData {
		if s, ok := m.Value.(string); ok {
			o.Metadata = append(o.Metadata, order.MetaEntry{Key: m.Key, Value: s})
		}
	}

	if a.identifier != nil {
		o.Store = a.identifier.Identify(&o)
	}

	return o, true
}

func convertAddress(wc *wcAddress) order.Address {
	return order.Address{
		FirstName: wc.FirstName,
		LastName:  wc.LastName,
		Company:   wc.Company,
		Address1:  wc.Address1,
		Address2:  wc.Address2,
		City:      wc.City,
		State:     wc.State,
		Postcode:  wc.Postcode,
		Country:   wc.Country,
	}
}

func parseWCTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range wcTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func joinStatuses(statuses []string) string {
	return strings.Join(statuses, ",")
}
