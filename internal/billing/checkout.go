// internal/billing/checkout.go
//
// Lemon Squeezy checkout creation.
//
// Notes
// -----
// The store and variant ride in JSON:API relationships; the user id and
// plan name ride in checkout custom data so the webhook can attribute
// the subscription later.  Base URL is swappable for tests.

package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultCheckoutBase = "https://api.lemonsqueezy.com"

// Checkout creates hosted checkout sessions.
type Checkout struct {
	apiKey  string
	storeID string
	baseURL string
	httpc   *http.Client
}

// CheckoutOption tweaks a Checkout at construction.
type CheckoutOption func(*Checkout)

// WithCheckoutBaseURL overrides the API endpoint, for tests.
func WithCheckoutBaseURL(u string) CheckoutOption {
	return func(c *Checkout) { c.baseURL = u }
}

// WithCheckoutHTTPClient overrides the HTTP client.
func WithCheckoutHTTPClient(hc *http.Client) CheckoutOption {
	return func(c *Checkout) { c.httpc = hc }
}

// NewCheckout builds a checkout client for one store.
func NewCheckout(apiKey, storeID string, opts ...CheckoutOption) *Checkout {
	c := &Checkout{
		apiKey:  apiKey,
		storeID: storeID,
		baseURL: defaultCheckoutBase,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type checkoutRequest struct {
	Data struct {
		Type       string `json:"type"`
		Attributes struct {
			CheckoutData struct {
				Email  string            `json:"email,omitempty"`
				Custom map[string]string `json:"custom"`
			} `json:"checkout_data"`
			ProductOptions struct {
				RedirectURL string `json:"redirect_url,omitempty"`
			} `json:"product_options"`
		} `json:"attributes"`
		Relationships struct {
			Store   relationship `json:"store"`
			Variant relationship `json:"variant"`
		} `json:"relationships"`
	} `json:"data"`
}

type relationship struct {
	Data struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"data"`
}

// Create opens a checkout for variantID and returns the hosted URL.
// userID and planName are embedded as custom data for the webhook.
func (c *Checkout) Create(ctx context.Context, variantID, email, userID, planName, redirectURL string) (string, error) {
	var req checkoutRequest
	req.Data.Type = "checkouts"
	req.Data.Attributes.CheckoutData.Email = email
	req.Data.Attributes.CheckoutData.Custom = map[string]string{
		"user_id":   userID,
		"plan_name": planName,
	}
	req.Data.Attributes.ProductOptions.RedirectURL = redirectURL
	req.Data.Relationships.Store.Data.Type = "stores"
	req.Data.Relationships.Store.Data.ID = c.storeID
	req.Data.Relationships.Variant.Data.Type = "variants"
	req.Data.Relationships.Variant.Data.ID = variantID

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkouts", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	hr.Header.Set("Accept", "application/vnd.api+json")
	hr.Header.Set("Content-Type", "application/vnd.api+json")
	hr.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(hr)
	if err != nil {
		return "", fmt.Errorf("billing: create checkout: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("billing: create checkout: status %d", resp.StatusCode)
	}

	var out struct {
		Data struct {
			Attributes struct {
				URL string `json:"url"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	if out.Data.Attributes.URL == "" {
		return "", fmt.Errorf("billing: create checkout: empty url")
	}
	return out.Data.Attributes.URL, nil
}
