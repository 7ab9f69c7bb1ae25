package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// PayPalSandboxURL and PayPalLiveURL are the Orders v2 API hosts.
	PayPalSandboxURL = "https://api-m.sandbox.paypal.com"
	PayPalLiveURL    = "https://api-m.paypal.com"

	// paypalCaptureCompleted is the capture status that proves payment.
	paypalCaptureCompleted = "COMPLETED"
)

// PayPalClient implements Gateway against the PayPal Orders v2 API.
// It performs no automatic retries: a duplicate create risks a double
// charge and retry policy belongs to the caller.
type PayPalClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// PayPalOption configures PayPalClient.
type PayPalOption func(*PayPalClient)

// WithBaseURL points the client at a non-default host (sandbox, tests).
func WithBaseURL(u string) PayPalOption {
	return func(c *PayPalClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) PayPalOption {
	return func(c *PayPalClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) PayPalOption {
	return func(c *PayPalClient) {
		c.client = client
	}
}

// NewPayPalClient creates a PayPal Orders v2 client.
func NewPayPalClient(clientID, clientSecret string, opts ...PayPalOption) *PayPalClient {
	c := &PayPalClient{
		baseURL:      PayPalLiveURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Gateway = (*PayPalClient)(nil)

// SuccessStatus returns the capture status that proves payment.
func (c *PayPalClient) SuccessStatus() string {
	return paypalCaptureCompleted
}

// Wire structs for the Orders v2 API. The coin amount rides in
// purchase_units[0].custom_id so capture can recover it.
type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalPurchaseUnit struct {
	Amount   paypalAmount `json:"amount"`
	CustomID string       `json:"custom_id,omitempty"`
}

type paypalOrderRequest struct {
	Intent        string               `json:"intent"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
}

type paypalOrderResponse struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
}

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// CreateOrder creates an order for the given total with intent CAPTURE.
func (c *PayPalClient) CreateOrder(ctx context.Context, total decimal.Decimal, currency string, meta Metadata) (*Order, error) {
	reqBody := paypalOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []paypalPurchaseUnit{{
			Amount: paypalAmount{
				CurrencyCode: currency,
				Value:        total.StringFixed(2),
			},
			CustomID: meta.CoinAmount.String(),
		}},
	}

	raw, err := c.post(ctx, "/v2/checkout/orders", reqBody)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var resp paypalOrderResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode create order response: %w", err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("create order: response carries no order id")
	}

	return &Order{OrderID: resp.ID, Raw: raw}, nil
}

// CaptureOrder captures an order and recovers the embedded metadata.
func (c *PayPalClient) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(orderID))
	raw, err := c.post(ctx, path, struct{}{})
	if err != nil {
		return nil, fmt.Errorf("capture order %s: %w", orderID, err)
	}

	var resp paypalOrderResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode capture response: %w", err)
	}

	result := &CaptureResult{Status: resp.Status, Raw: raw}
	if len(resp.PurchaseUnits) > 0 && resp.PurchaseUnits[0].CustomID != "" {
		coinAmount, err := decimal.NewFromString(resp.PurchaseUnits[0].CustomID)
		if err != nil {
			return nil, fmt.Errorf("capture order %s: malformed coin amount metadata %q", orderID, resp.PurchaseUnits[0].CustomID)
		}
		result.Metadata.CoinAmount = coinAmount
	}

	return result, nil
}

// post sends an authenticated JSON POST and returns the raw response body.
func (c *PayPalClient) post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned HTTP %d: %s", resp.StatusCode, truncate(raw, 256))
	}

	return raw, nil
}

// token returns a cached OAuth2 access token, refreshing when expired.
func (c *PayPalClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned HTTP %d: %s", resp.StatusCode, truncate(raw, 256))
	}

	var tok paypalTokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}

	c.accessToken = tok.AccessToken
	// Refresh a minute early so in-flight requests never carry a stale token.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
