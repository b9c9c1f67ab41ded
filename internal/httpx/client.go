package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"kestrel-trading-bot/internal/logger"
)

// ErrUnavailable marks transport-level failures: the remote service could
// not be reached at all. Response-level errors (4xx/5xx, bad payloads) do
// not carry it.
var ErrUnavailable = errors.New("upstream unavailable")

// Client is a thin HTTP client shared by the exchange and LLM gateways.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	limiter    *rate.Limiter
	maxElapsed time.Duration
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithTimeout bounds each individual request.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL prefixes all request URLs.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHeader sets a default header for all requests.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
}

// WithRetry bounds the total time spent retrying transport failures.
// Zero disables retries.
func WithRetry(maxElapsed time.Duration) ClientOption {
	return func(c *Client) {
		c.maxElapsed = maxElapsed
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		headers:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request is one HTTP request configuration.
type Request struct {
	Method  string
	URL     string
	Body    any
	Headers map[string]string
}

// Response is the raw result of a request.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Do executes the request. Transport failures are retried with exponential
// backoff (when configured) and wrapped in ErrUnavailable; non-2xx responses
// return a *StatusError without retrying.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	url := req.URL
	if c.baseURL != "" {
		url = c.baseURL + req.URL
	}

	var bodyBytes []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyBytes = b
	}

	var resp *Response
	operation := func() error {
		r, err := c.doOnce(ctx, req, url, bodyBytes)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}

	if c.maxElapsed <= 0 {
		if err := operation(); err != nil {
			return nil, err
		}
		return resp, nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.maxElapsed
	err := backoff.Retry(func() error {
		err := operation()
		if err != nil && !errors.Is(err, ErrUnavailable) {
			// Response-level failures are not transient.
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(strategy, ctx))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) doOnce(ctx context.Context, req *Request, url string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Warn(ctx, "HTTP request failed", "method", req.Method, "url", url, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, req.Method, url, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	logger.Debug(ctx, "HTTP response",
		"method", req.Method,
		"url", url,
		"status", httpResp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"body_size", len(respBody),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: string(respBody)}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}, nil
}

// GET performs a GET request.
func (c *Client) GET(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, URL: url, Headers: headers})
}

// POST performs a POST request with a JSON body.
func (c *Client) POST(ctx context.Context, url string, body any, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, URL: url, Body: body, Headers: headers})
}

// ParseJSON unmarshals the response body into v.
func (r *Response) ParseJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("parse JSON response: %w", err)
	}
	return nil
}
