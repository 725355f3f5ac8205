package ecommerce

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mayasquare/sales-analytics/internal/domain/order"
)

// CSV source errors
var (
	ErrEmptyCSV          = errors.New("csv: file is empty")
	ErrInvalidEncoding   = errors.New("csv: file is not valid UTF-8")
	ErrMissingCSVHeader  = errors.New("csv: missing header row")
	ErrMissingCSVColumns = errors.New("csv: required columns not found")
)

// Timestamp layouts seen in WooCommerce admin CSV exports.
var csvTimeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CSVSource reads orders from a WooCommerce admin CSV export. Column
// names follow the standard export format, with the common aliases
// accepted for the order ID, total and creation date.
type CSVSource struct {
	path       string
	currency   string
	identifier *StoreIdentifier
	logger     *zap.Logger
}

// CSVSourceOption is a functional option for CSVSource
type CSVSourceOption func(*CSVSource)

// WithCSVLogger sets the logger
func WithCSVLogger(logger *zap.Logger) CSVSourceOption {
	return func(s *CSVSource) {
		s.logger = logger
	}
}

// NewCSVSource creates a CSV order source. The currency is applied to
// rows that do not carry their own.
func NewCSVSource(path, currency string, identifier *StoreIdentifier, opts ...CSVSourceOption) *CSVSource {
	s := &CSVSource{
		path:       path,
		currency:   currency,
		identifier: identifier,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PullOrders parses the whole file. Rows that cannot be parsed are
// skipped with a warning; a malformed file fails the pull.
func (s *CSVSource) PullOrders(ctx context.Context) ([]order.Order, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("csv: failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	return s.parse(ctx, f)
}

func (s *CSVSource) parse(ctx context.Context, r io.Reader) ([]order.Order, error) {
	buf := bufio.NewReader(r)

	// Detect and strip UTF-8 BOM
	head, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("csv: failed to read file: %w", err)
	}
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	if err := validateUTF8(buf); err != nil {
		return nil, err
	}

	reader := csv.NewReader(buf)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingCSVHeader
	}
	if err != nil {
		return nil, fmt.Errorf("csv: failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	if !hasAny(columns, "Order ID", "ID") {
		return nil, fmt.Errorf("%w: need Order ID or ID", ErrMissingCSVColumns)
	}

	orders := make([]order.Order, 0)
	line := 1
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			s.logger.Warn("Skipping malformed CSV row", zap.Int("line", line), zap.Error(err))
			continue
		}

		o, ok := s.parseRow(columns, record, line)
		if !ok {
			continue
		}
		orders = append(orders, o)
	}

	s.logger.Info("Parsed orders from CSV",
		zap.String("path", s.path),
		zap.Int("count", len(orders)))
	return orders, nil
}

func (s *CSVSource) parseRow(columns map[string]int, record []string, line int) (order.Order, bool) {
	get := func(names ...string) string {
		for _, name := range names {
			if idx, ok := columns[name]; ok && idx < len(record) {
				if record[idx] != "" {
					return record[idx]
				}
			}
		}
		return ""
	}

	id, err := strconv.ParseInt(get("Order ID", "ID"), 10, 64)
	if err != nil {
		s.logger.Warn("Skipping row without a numeric order ID", zap.Int("line", line))
		return order.Order{}, false
	}

	createdAt, err := parseCSVTime(get("Date Created", "Date"))
	if err != nil {
		s.logger.Warn("Skipping row with unparseable creation date",
			zap.Int("line", line),
			zap.Int64("order_id", id))
		return order.Order{}, false
	}

	currency := get("Currency")
	if currency == "" {
		currency = s.currency
	}

	o := order.Order{
		ID:            id,
		Number:        get("Order Number"),
		Status:        get("Status"),
		Currency:      currency,
		Total:         ParseDecimal(get("Total", "Order Total")),
		TotalTax:      ParseDecimal(get("Tax Total")),
		TotalShipping: ParseDecimal(get("Shipping Total")),
		CreatedAt:     createdAt,
		Shipping: order.Address{
			FirstName: get("Shipping First Name"),
			LastName:  get("Shipping Last Name"),
			Company:   get("Shipping Company"),
			Address1:  get("Shipping Address 1"),
			Address2:  get("Shipping Address 2"),
			City:      get("Shipping City"),
			State:     get("Shipping State"),
			Postcode:  get("Shipping Postcode"),
			Country:   get("Shipping Country"),
		},
		Billing: order.Address{
			FirstName: get("Billing First Name"),
			LastName:  get("Billing Last Name"),
			Company:   get("Billing Company"),
			Address1:  get("Billing Address 1"),
			Address2:  get("Billing Address 2"),
			City:      get("Billing City"),
			State:     get("Billing State"),
			Postcode:  get("Billing Postcode"),
			Country:   get("Billing Country"),
		},
		LineItems: make([]order.LineItem, 0),
	}

	// Line items arrive as a JSON array in a single column when the
	// export includes them.
	if raw := get("Line Items"); raw != "" {
		var items []wcLineItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			s.logger.Debug("Could not parse line items",
				zap.Int64("order_id", id),
				zap.Error(err))
		} else {
			for _, item := range items {
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
		}
	}

	if s.identifier != nil {
		o.Store = s.identifier.Identify(&o)
	}

	return o, true
}

// validateUTF8 checks that the content is valid UTF-8
func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("csv: failed to read file for encoding validation: %w", err)
	}

	if len(content) == 0 {
		return ErrEmptyCSV
	}

	// A full peek window can cut through the middle of a multi-byte
	// rune; drop the incomplete tail before validating.
	if len(content) == checkSize {
		content = trimPartialRune(content)
	}

	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}

	return nil
}

// trimPartialRune removes a multi-byte rune whose trailing bytes were
// cut off at the end of b. Complete runes and invalid bytes are left
// untouched.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if !utf8.RuneStart(c) {
			continue
		}
		if c >= utf8.RuneSelf && !utf8.FullRune(b[len(b)-i:]) {
			return b[:len(b)-i]
		}
		break
	}
	return b
}

func hasAny(columns map[string]int, names ...string) bool {
	for _, name := range names {
		if _, ok := columns[name]; ok {
			return true
		}
	}
	return false
}

func parseCSVTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	var lastErr error
	for _, layout := range csvTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
