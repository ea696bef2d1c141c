// Package payment integrates the hosted checkout provider for premium plans.
//
// The integration is deliberately thin: we create a checkout session
// server-side (the secret key never reaches the browser) and hand the client
// a redirect URL. Fulfillment happens on the provider's hosted page; we do
// not store payment state.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Atulsharma2004/quote-app-at/internal/apperror"
)

// Plan identifiers accepted by CreateCheckout.
const (
	PlanBasic   = "basic"
	PlanPremium = "premium"
)

// Prices are in paise (INR minor units): ₹349 and ₹499.
var planPrices = map[string]int64{
	PlanBasic:   34900,
	PlanPremium: 49900,
}

// planNames are the line-item labels shown on the hosted checkout page.
var planNames = map[string]string{
	PlanBasic:   "QuoteApp Basic",
	PlanPremium: "QuoteApp Premium",
}

// Session is what the handler returns to the client: the id for reference and
// the URL to redirect the browser to.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client creates checkout sessions against the provider's REST API.
type Client struct {
	secretKey  string
	successURL string
	cancelURL  string
	baseURL    string
	http       *http.Client
}

// NewClient creates a payment client. successURL/cancelURL are where the
// provider sends the browser after the hosted page completes or is abandoned.
func NewClient(secretKey, successURL, cancelURL string) *Client {
	return &Client{
		secretKey:  secretKey,
		successURL: successURL,
		cancelURL:  cancelURL,
		baseURL:    "https://api.stripe.com/v1",
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a secret key is configured. When false the handler
// returns a validation error instead of calling out with empty credentials.
func (c *Client) Enabled() bool {
	return c.secretKey != ""
}

// CreateCheckout creates a hosted checkout session for the given plan and
// returns the redirect target. The customer email pre-fills the hosted form.
func (c *Client) CreateCheckout(ctx context.Context, plan, customerEmail string) (*Session, error) {
	price, ok := planPrices[plan]
	if !ok {
		return nil, apperror.ValidationFailed("plan", "plan must be basic or premium")
	}
	if !c.Enabled() {
		return nil, apperror.ValidationFailed("", "payments are not configured")
	}

	// The provider API takes form-encoded bodies, not JSON.
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)
	form.Set("customer_email", customerEmail)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "inr")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(price, 10))
	form.Set("line_items[0][price_data][product_data][name]", planNames[plan])

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payment: building checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.secretKey, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment: calling checkout API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment: checkout API returned status %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("payment: decoding checkout response: %w", err)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("payment: checkout session has no redirect URL")
	}

	return &session, nil
}
