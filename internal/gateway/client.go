// Package gateway is the boundary over all outbound calls to the remote
// audit and market-data services. Each operation returns structured data
// or a typed failure; retry policy belongs to the caller, never to the
// gateway itself.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
)

// Sentinel failures distinguishable from plain transport errors.
var (
	// ErrNotFound means the token is unknown to the data provider.
	ErrNotFound = errors.New("token not found")

	// ErrMalformed means the remote payload did not have the expected
	// shape. Fatal for the current session.
	ErrMalformed = errors.New("malformed payload")
)

// Client performs typed requests against the remote audit service.
type Client struct {
	baseURL string
	client  *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a gateway client against the given API base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON performs a GET and decodes the response body into result.
// A 404 maps to ErrNotFound, other non-2xx statuses to a transport error,
// and an undecodable body to ErrMalformed.
func (c *Client) getJSON(ctx context.Context, path string, result interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, result)
}

// postJSON performs a POST with an empty body.
func (c *Client) postJSON(ctx context.Context, path string, result interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, result)
}

func (c *Client) doJSON(ctx context.Context, method, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrMalformed, path, err)
	}
	return nil
}
