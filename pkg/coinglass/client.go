package coinglass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://open-api-v3.coinglass.com"
	defaultHTTPTimeout = 15 * time.Second

	apiKeyHeader = "CG-API-KEY"
)

// APIError reports a non-success code in the CoinGlass response envelope.
type APIError struct {
	Code string
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coinglass: api code %s: %s", e.Code, e.Msg)
}

// Client wraps access to the CoinGlass open API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// NewClient constructs a CoinGlass API client. The key is sent on every
// request via the CG-API-KEY header.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// get performs a GET request and decodes the envelope's data field into result.
// Failures are returned to the caller untouched; there is no retry here.
func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("coinglass: build request: %w", err)
	}
	httpReq.Header.Set("accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("coinglass: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("coinglass: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("coinglass: %s: http status %d: %s", path, resp.StatusCode, string(body))
	}

	var envelope struct {
		Code    json.Number     `json:"code"`
		Msg     string          `json:"msg"`
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("coinglass: decode response: %w", err)
	}
	if code := envelope.Code.String(); code != "" && code != "0" {
		return &APIError{Code: code, Msg: envelope.Msg}
	}
	if envelope.Success != nil && !*envelope.Success {
		return &APIError{Code: envelope.Code.String(), Msg: envelope.Msg}
	}

	if result != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("coinglass: decode data: %w", err)
		}
	}
	return nil
}
