package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIError is a non-2xx reply from the gateway, body kept verbatim.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: status %d: %s", e.Status, e.Body)
}

// Client talks to the Pakasir payment gateway. All calls are bounded by the
// client timeout; there are no retries.
type Client struct {
	baseURL string
	project string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, project, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		project: project,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) params(orderID string, amount float64) url.Values {
	q := url.Values{}
	q.Set("project", c.project)
	q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	q.Set("order_id", orderID)
	q.Set("api_key", c.apiKey)
	return q
}

// TransactionDetail fetches the raw transaction-detail body for an order.
func (c *Client) TransactionDetail(ctx context.Context, orderID string, amount float64) (map[string]any, error) {
	return c.get(ctx, "/transactiondetail", c.params(orderID, amount))
}

// VerifyPaid classifies whether an order's payment has settled. A not-paid
// status is a normal negative result, not an error; the raw transaction is
// returned either way for diagnostics.
func (c *Client) VerifyPaid(ctx context.Context, orderID string, amount float64) (bool, map[string]any, error) {
	body, err := c.TransactionDetail(ctx, orderID, amount)
	if err != nil {
		return false, nil, err
	}
	tx := ExtractTransaction(body)
	return LooksPaid(StatusOf(tx)), tx, nil
}

// CreateTransaction opens a QRIS payment for the order.
func (c *Client) CreateTransaction(ctx context.Context, orderID string, amount float64) (map[string]any, error) {
	return c.post(ctx, "/transactioncreate", orderID, amount)
}

// CancelTransaction voids a pending payment.
func (c *Client) CancelTransaction(ctx context.Context, orderID string, amount float64) (map[string]any, error) {
	return c.post(ctx, "/transactioncancel", orderID, amount)
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path, orderID string, amount float64) (map[string]any, error) {
	payload, err := json.Marshal(map[string]any{
		"project":  c.project,
		"order_id": orderID,
		"amount":   amount,
		"api_key":  c.apiKey,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (map[string]any, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	var body map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("gateway: decode response: %w", err)
		}
	}
	return body, nil
}
