// Package backend is the HTTP client for the commerce backend API. It owns
// request building, bearer propagation, the retry budget and response
// envelope decoding; resource wrappers live alongside in *_api.go files.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/infrastructure/metrics"
)

const maxResponseBytes = 10 << 20

// Config configures the client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration
	UserAgent  string
	// Transport overrides the base transport (tests); it is still wrapped
	// with otelhttp.
	Transport http.RoundTripper
}

// Client calls the backend.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	retryCount int
	retryDelay time.Duration
	userAgent  string
	metrics    *metrics.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithMetrics records every call in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a backend client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(transport),
			Timeout:   cfg.Timeout,
		},
		baseURL:    base,
		retryCount: cfg.RetryCount,
		retryDelay: cfg.RetryDelay,
		userAgent:  cfg.UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Request is one backend call.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any
	// Token overrides the bearer token carried by the context.
	Token string
	// Anonymous sends no Authorization header at all.
	Anonymous bool
	// IdempotencyKey is sent as Idempotency-Key and makes non-idempotent
	// methods eligible for retry.
	IdempotencyKey string
}

// Do executes req and decodes the response payload into out (may be nil).
// Network errors and 502/503/504 are retried up to the configured retry count
// for idempotent requests.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	body, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// GetPage fetches a paginated collection.
func GetPage[T any](ctx context.Context, c *Client, path string, query map[string]string) (shared.Page[T], error) {
	body, err := c.do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return shared.Page[T]{}, err
	}
	return decodePage[T](body)
}

func (c *Client) do(ctx context.Context, req Request) ([]byte, error) {
	u := c.buildURL(req.Path, req.Query)

	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	token := req.Token
	if token == "" {
		token = TokenFromContext(ctx)
	}
	if req.Anonymous {
		token = ""
	}

	attempts := 1
	if c.retryable(req) {
		attempts += c.retryCount
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
			logger.L(ctx).Debug("Retrying backend request",
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr),
			)
		}

		status, body, err := c.roundTrip(ctx, req, u, payload, token)
		if err != nil {
			lastErr = fmt.Errorf("%w: %s %s: %v", ErrUnavailable, req.Method, req.Path, err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if status >= 200 && status < 300 {
			return body, nil
		}
		apiErr := parseError(req.Method, req.Path, status, body)
		if !shouldRetryStatus(status) {
			return nil, apiErr
		}
		lastErr = apiErr
	}
	return nil, lastErr
}

func (c *Client) roundTrip(ctx context.Context, req Request, u string, payload []byte, token string) (int, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if rid := logger.GetRequestID(ctx); rid != "" {
		httpReq.Header.Set("X-Request-ID", rid)
	}
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveBackend(req.Method, 0, time.Since(start))
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.ObserveBackend(req.Method, resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) retryable(req Request) bool {
	if c.retryCount == 0 {
		return false
	}
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return req.IdempotencyKey != ""
}

func shouldRetryStatus(status int) bool {
	return status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout
}

// buildURL joins the base URL (including any base path) with an already
// escaped path and the query.
func (c *Client) buildURL(path string, query map[string]string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := *c.baseURL
	escaped := strings.TrimRight(c.baseURL.EscapedPath(), "/") + path
	if unescaped, err := url.PathUnescape(escaped); err == nil {
		u.Path = unescaped
		u.RawPath = escaped
	} else {
		u.Path = escaped
		u.RawPath = ""
	}
	if len(query) > 0 {
		q := url.Values{}
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// PathID escapes a path segment supplied by a caller.
func PathID(id string) string {
	return url.PathEscape(id)
}

type tokenKey struct{}

// WithToken returns a context carrying the bearer token for backend calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token stored by WithToken.
func TokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}

// IsTransportError reports whether err is a transport failure rather than a
// backend answer.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
