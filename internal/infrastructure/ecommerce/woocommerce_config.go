package ecommerce

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config errors
var (
	ErrMissingBaseURL     = errors.New("woocommerce: base URL is required")
	ErrMissingCredentials = errors.New("woocommerce: consumer key and secret are required")
)

// WooCommerceConfig holds the settings needed to talk to the
// WooCommerce REST API (v3).
type WooCommerceConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	PerPage        int
	Statuses       []string
	TimeoutSeconds int
}

// Validate checks that the configuration is usable
func (c *WooCommerceConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("woocommerce: invalid base URL %q", c.BaseURL)
	}
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// perPage returns the page size, applying the API default
func (c *WooCommerceConfig) perPage() int {
	if c.PerPage <= 0 {
		return 100
	}
	return c.PerPage
}

// statuses returns the order statuses to pull, defaulting to completed
func (c *WooCommerceConfig) statuses() []string {
	if len(c.Statuses) == 0 {
		return []string{"completed"}
	}
	return c.Statuses
}

// timeout returns the HTTP client timeout
func (c *WooCommerceConfig) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
