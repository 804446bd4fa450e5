// Package payments is a thin HTTP client for the external payment
// provider's catalog API. Only the surface the sync use-case needs is
// implemented; retries and webhooks belong to the provider SDK layer.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://api.stripe.com/v1"

// Product is a sellable plan in the provider's catalog.
type Product struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Price is a billing interval/amount attached to a product.
type Price struct {
	ID         string `json:"id"`
	ProductID  string `json:"product"`
	Interval   string `json:"interval"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
}

// Page is one page of provider results; HasMore signals that the caller
// must continue with the last item's ID as the cursor.
type Page[T any] struct {
	Data    []T  `json:"data"`
	HasMore bool `json:"has_more"`
}

// Client lists catalog objects from the provider. Implementations must
// honor context cancellation on every call.
type Client interface {
	ListProducts(ctx context.Context, cursor string) (*Page[Product], error)
	ListPrices(ctx context.Context, cursor string) (*Page[Price], error)
}

// ClientOption configures the HTTP client.
type ClientOption func(*HTTPClient)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *HTTPClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient = httpClient
	}
}

// HTTPClient talks to the real provider API.
type HTTPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewClient creates a payment provider client.
func NewClient(apiKey string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) ListProducts(ctx context.Context, cursor string) (*Page[Product], error) {
	return list[Product](ctx, c, "/products", cursor)
}

func (c *HTTPClient) ListPrices(ctx context.Context, cursor string) (*Page[Price], error) {
	return list[Price](ctx, c, "/prices", cursor)
}

func list[T any](ctx context.Context, c *HTTPClient, path, cursor string) (*Page[T], error) {
	q := url.Values{"limit": {"100"}}
	if cursor != "" {
		q.Set("starting_after", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider error (status %d): %s", resp.StatusCode, string(body))
	}

	var page Page[T]
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &page, nil
}
