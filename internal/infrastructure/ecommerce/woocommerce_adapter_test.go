package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wcTestConfig(baseURL string) *WooCommerceConfig {
	return &WooCommerceConfig{
		BaseURL:        baseURL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		PerPage:        2,
	}
}

func wcOrderPayload(id int64, city string) map[string]any {
	return map[string]any{
		"id":           id,
		"number":       fmt.Sprintf("#%d", id),
		"status":       "completed",
		"currency":     "EUR",
		"total":        "100.00",
		"date_created": "2026-01-15T10:00:00",
		"shipping":     map[string]any{"city": city},
		"billing":      map[string]any{},
		"line_items": []map[string]any{
			{"product_id": 101, "name": "Product A", "quantity": 2, "subtotal": "60.00", "total": "60.00", "price": 30},
			{"product_id": 102, "name": "Product B", "quantity": 1, "subtotal": "40.00", "total": "40.00", "price": "40.00"},
		},
	}
}

func TestWooCommerceAdapter_PullOrders(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wp-json/wc/v3/orders", r.URL.Path)
		assert.Equal(t, "completed", r.URL.Query().Get("status"))
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		gotAuth = []string{user, pass}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		var payload []map[string]any
		switch page {
		case 1:
			payload = []map[string]any{
				wcOrderPayload(1, "Paris"),
				wcOrderPayload(2, "Lyon"),
			}
		case 2:
			// Short page ends pagination.
			payload = []map[string]any{wcOrderPayload(3, "Berlin")}
		default:
			payload = []map[string]any{}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	defer srv.Close()

	identifier := NewStoreIdentifier(IdentifyByCity, "", testMappings())
	adapter, err := NewWooCommerceAdapter(wcTestConfig(srv.URL), identifier)
	require.NoError(t, err)

	orders, err := adapter.PullOrders(context.Background(), PullRequest{})
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, []string{"ck_test", "cs_test"}, gotAuth)

	first := orders[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "#1", first.Number)
	assert.True(t, first.Total.Equal(decimalFromString(t, "100.00")))
	assert.Equal(t, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), first.CreatedAt)
	require.NotNil(t, first.Store)
	assert.Equal(t, "Paris Store", *first.Store)

	require.Len(t, first.LineItems, 2)
	assert.Equal(t, int64(101), first.LineItems[0].ProductID)
	assert.Equal(t, int64(2), first.LineItems[0].Quantity)
	assert.True(t, first.LineItems[0].Total.Equal(decimalFromString(t, "60.00")))
	// Numeric and string prices both parse.
	assert.True(t, first.LineItems[0].Price.Equal(decimalFromString(t, "30")))
	assert.True(t, first.LineItems[1].Price.Equal(decimalFromString(t, "40.00")))

	// Berlin is not mapped to any store.
	assert.Nil(t, orders[2].Store)
}

func TestWooCommerceAdapter_DateFilters(t *testing.T) {
	var gotAfter, gotBefore string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAfter = r.URL.Query().Get("after")
		gotBefore = r.URL.Query().Get("before")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	adapter, err := NewWooCommerceAdapter(wcTestConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = adapter.PullOrders(context.Background(), PullRequest{
		After:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Before: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01T00:00:00Z", gotAfter)
	assert.Equal(t, "2026-02-01T00:00:00Z", gotBefore)
}

func TestWooCommerceAdapter_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	adapter, err := NewWooCommerceAdapter(wcTestConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = adapter.PullOrders(context.Background(), PullRequest{})
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestWooCommerceAdapter_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	adapter, err := NewWooCommerceAdapter(wcTestConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = adapter.PullOrders(context.Background(), PullRequest{})
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestWooCommerceAdapter_InvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	adapter, err := NewWooCommerceAdapter(wcTestConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = adapter.PullOrders(context.Background(), PullRequest{})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestWooCommerceAdapter_DropsUnparseableDates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := wcOrderPayload(1, "Paris")
		payload["date_created"] = "yesterday"
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode([]map[string]any{payload}))
	}))
	defer srv.Close()

	adapter, err := NewWooCommerceAdapter(wcTestConfig(srv.URL), nil)
	require.NoError(t, err)

	orders, err := adapter.PullOrders(context.Background(), PullRequest{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestNewWooCommerceAdapter_InvalidConfig(t *testing.T) {
	_, err := NewWooCommerceAdapter(&WooCommerceConfig{}, nil)
	assert.ErrorIs(t, err, ErrMissingBaseURL)

	_, err = NewWooCommerceAdapter(&WooCommerceConfig{BaseURL: "https://shop.example.com"}, nil)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
