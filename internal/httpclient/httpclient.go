package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultHTTPTimeout = 60 * time.Second

	// maxErrorBodySize bounds how much of a failed response is kept in errors.
	maxErrorBodySize = 4 * 1024

	RequestIDHeader = "X-Request-Id"
)

// UserAgent is sent with every request. The version is set by the command layer.
var UserAgent = "meshcapade-export/dev"

// Client wraps an HTTP client with the Meshcapade bearer token.
// Requests are not retried; callers decide what a failure means.
type Client struct {
	Token          string
	UnderlyingHTTP *http.Client
}

// New returns a client whose connect and response-header waits are bounded by
// timeout. Streaming a body is not bounded, so large downloads are not cut off.
func New(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}
	return &Client{
		Token:          token,
		UnderlyingHTTP: &http.Client{Transport: transport},
	}
}

// PostJSON sends payload as a JSON body with bearer authentication.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	req.Header.Set("User-Agent", UserAgent)

	return c.UnderlyingHTTP.Do(req)
}

// Get performs a GET without the bearer token; download links are pre-signed.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	return c.UnderlyingHTTP.Do(req)
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error: %s", e.Status)
	}
	return fmt.Sprintf("HTTP error: %s: %s", e.Status, strings.Join(strings.Fields(e.Body), " "))
}

// CheckStatus returns a *StatusError when resp is not 2xx. The body is read
// (bounded) but not closed.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}
