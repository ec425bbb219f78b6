package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// apiVersion pins the processor API behavior the gateway was written
// against.
const apiVersion = "2025-04-30.basil"

// PaymentIntentParams describes a payment intent creation request. Amounts
// are in the currency's minor unit, as the processor expects.
type PaymentIntentParams struct {
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

// PaymentIntent is the subset of the processor's payment intent object the
// gateway reads, both from API responses and webhook payloads.
type PaymentIntent struct {
	ID           string            `json:"id"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	ClientSecret string            `json:"client_secret"`
	Metadata     map[string]string `json:"metadata"`
}

// APIError is a rejection reported by the processor's API. Its HTTP status
// is passed through to the gateway's caller.
type APIError struct {
	StatusCode int
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stripe: %s (%s): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("stripe: %s: %s", e.Type, e.Message)
}

// IntentCreator is the processor capability the wallet handlers depend on.
type IntentCreator interface {
	CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (*PaymentIntent, error)
}

// Client talks to the processor's REST API with the account's secret key.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient builds a processor API client.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreatePaymentIntent creates a payment intent with automatic payment
// methods enabled and returns the client secret the frontend needs to
// complete the payment.
func (c *Client) CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.AmountMinor, 10))
	form.Set("currency", params.Currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	for _, key := range sortedKeys(params.Metadata) {
		form.Set(fmt.Sprintf("metadata[%s]", key), params.Metadata[key])
	}

	var intent PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, target any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Stripe-Version", apiVersion)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call stripe api: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var wrapper struct {
			Error APIError `json:"error"`
		}
		apiErr := APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(payload))}
		if err := json.Unmarshal(payload, &wrapper); err == nil && wrapper.Error.Message != "" {
			apiErr = wrapper.Error
			apiErr.StatusCode = resp.StatusCode
		}
		return &apiErr
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
