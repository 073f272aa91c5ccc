package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent with every upstream request unless the request sets its own.
const DefaultUserAgent = "Mozilla/5.0 (compatible; MarketBot/1.0)"

// maxBodySnippet is the number of body bytes kept in the StatusError.
const maxBodySnippet = 256

// ErrDecode is returned by the scavenger clients when the upstream body can't be parsed.
var ErrDecode = errors.New("failed to decode response")

// Client is a small wrapper around http.Client with a fixed timeout, User-Agent and headers.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string
}

// New creates a Client with the given per-request timeout.
func New(timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout, Transport: transport},
		UserAgent: DefaultUserAgent,
	}
}

// Do sends the request and returns the body of a 2xx response.
// Any other status is returned as *StatusError.
func (c *Client) Do(ctx context.Context, req *http.Request) ([]byte, error) {
	req = req.WithContext(ctx)
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Host, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(res.Body)

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet := body
		if len(snippet) > maxBodySnippet {
			snippet = snippet[:maxBodySnippet]
		}
		return nil, &StatusError{Code: res.StatusCode, Status: res.Status, Body: string(snippet)}
	}

	return body, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int    // HTTP status code
	Status string // HTTP status line (e.g. "502 Bad Gateway")
	Body   string // beginning of the response body
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("invalid status code error: %d, value %s", e.Code, e.Status)
}

// Temporary reports whether the request may succeed if repeated (5xx and 429).
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Decode wraps a parsing error with ErrDecode.
func Decode(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrDecode, err)
}
