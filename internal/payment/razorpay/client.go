package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/flexiworks/cetpredict/internal/payment/domain"
)

// orderResource is the provider's order shape, narrowed to what we read.
type orderResource struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client is a minimal Razorpay Orders API client.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		keyID:     strings.TrimSpace(keyID),
		keySecret: strings.TrimSpace(keySecret),
		client:    &http.Client{Timeout: 12 * time.Second},
	}
}

// CreateOrder mints a provider order. The amount is already in minor units.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (orderResource, error) {
	body := map[string]any{
		"amount":          amountMinor,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/orders", body)
}

// FetchOrder returns the provider's authoritative view of an order. A status
// of "paid" is the poll-fallback confirmation signal.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (orderResource, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/orders/"+orderID, nil)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body map[string]any) (orderResource, error) {
	if c.keyID == "" || c.keySecret == "" {
		return orderResource{}, domain.ErrProviderUnavailable
	}

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return orderResource{}, err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return orderResource{}, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return orderResource{}, domain.ErrProviderUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var providerErr errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&providerErr)
		return orderResource{}, domain.ErrProviderUnavailable
	}

	var order orderResource
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return orderResource{}, domain.ErrProviderUnavailable
	}
	if order.ID == "" {
		return orderResource{}, domain.ErrProviderUnavailable
	}
	return order, nil
}
