// Package apiclient is the single point of HTTP communication with the
// marketplace REST API. It injects the bearer token, and any 401 response
// triggers the unauthorized handler (a forced logout).
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/TheRipper284/frontend/internal/infrastructure/logger"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// Config configures the client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	RateLimit  float64 // requests per second, 0 disables
	RateBurst  int
	MaxRetries int // applies to idempotent methods only
}

// TokenSource yields the current bearer token. An empty token means no
// session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token implements TokenSource
func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// RequestObserver receives one call per finished HTTP exchange. Status is 0
// for transport errors.
type RequestObserver interface {
	ObserveRequest(method string, status int, d time.Duration)
}

// Client is the marketplace HTTP client. Safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	baseURL        *url.URL
	headers        map[string]string
	tokens         TokenSource
	limiter        *rate.Limiter
	retryConfig    RetryConfig
	observer       RequestObserver
	logger         *zap.Logger
	onUnauthorized func(ctx context.Context)
	tracer         trace.TracerProvider
	mu             sync.RWMutex
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxRetries  int
	RetryDelay  time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	ShouldRetry func(resp *http.Response, err error) bool
}

// DefaultRetryConfig returns the retry policy used when MaxRetries > 0.
func DefaultRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries: maxRetries,
		RetryDelay: 500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		ShouldRetry: func(resp *http.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		},
	}
}

// Option customizes a Client.
type Option func(*Client)

// WithUnauthorizedHandler sets the hook run on every 401 response.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver sets the request metrics sink.
func WithObserver(o RequestObserver) Option {
	return func(c *Client) { c.observer = o }
}

// WithHTTPClient replaces the underlying *http.Client. Its transport is used
// as-is, without tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTracerProvider enables client spans through otelhttp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp }
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(rc RetryConfig) Option {
	return func(c *Client) { c.retryConfig = rc }
}

// New creates a client for cfg.BaseURL. tokens may be nil for anonymous use.
func New(cfg Config, tokens TokenSource, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme %q", base.Scheme)
	}
	// A trailing slash makes relative resolution keep the /api prefix.
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "storefront-cli/1.0"
	}

	c := &Client{
		baseURL:     base,
		headers:     make(map[string]string),
		tokens:      tokens,
		retryConfig: DefaultRetryConfig(cfg.MaxRetries),
		logger:      zap.NewNop(),
	}
	c.headers["Accept"] = "application/json"
	c.headers["User-Agent"] = cfg.UserAgent

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxIdleConnsPerHost = 10
		var rt http.RoundTripper = transport
		if c.tracer != nil {
			rt = otelhttp.NewTransport(transport, otelhttp.WithTracerProvider(c.tracer))
		}
		c.httpClient = &http.Client{Transport: rt, Timeout: cfg.Timeout}
	}

	return c, nil
}

// Request represents an HTTP request to be executed.
type Request struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Headers     map[string]string
	Body        any

	// RequireAuth refuses to send the request without a session token.
	RequireAuth bool

	// rawBody and contentType carry pre-encoded bodies such as multipart forms.
	rawBody     []byte
	contentType string
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	RequestID  string
}

// Do executes req. A non-2xx status yields an *APIError alongside the response.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u, err := c.buildURL(req.Path, req.QueryParams)
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading session token: %w", err)
	}
	if req.RequireAuth && token == "" {
		return nil, ErrNotAuthenticated
	}

	body := req.rawBody
	contentType := req.contentType
	if body == nil && req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		contentType = "application/json"
	}

	requestID := uuid.NewString()
	ctx, log := logger.WithRequestID(ctx, c.logger, requestID)
	log = log.With(zap.String("method", req.Method), zap.String("path", u.Path))

	maxRetries := 0
	if isIdempotent(req.Method) {
		maxRetries = c.retryConfig.MaxRetries
	}

	var (
		resp    *Response
		lastErr error
	)
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			log.Debug("Retrying request", zap.Int("attempt", attempt), zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), bodyReader)
		if err != nil {
			return nil, fmt.Errorf("creating HTTP request: %w", err)
		}
		c.setHeaders(httpReq, req.Headers)
		if contentType != "" {
			httpReq.Header.Set("Content-Type", contentType)
		}
		httpReq.Header.Set(HeaderRequestID, requestID)
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}

		start := time.Now()
		httpResp, err := c.httpClient.Do(httpReq)
		duration := time.Since(start)

		if err != nil {
			c.observe(req.Method, 0, duration)
			lastErr = fmt.Errorf("sending request: %w", err)
			if attempt < maxRetries && c.retryConfig.ShouldRetry(nil, err) {
				continue
			}
			log.Debug("Request failed", zap.Error(err))
			return nil, lastErr
		}

		resp = &Response{
			StatusCode: httpResp.StatusCode,
			Headers:    httpResp.Header,
			Duration:   duration,
			RequestID:  requestID,
		}
		resp.Body, err = io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
		httpResp.Body.Close()
		c.observe(req.Method, resp.StatusCode, duration)
		if err != nil {
			return resp, fmt.Errorf("reading response body: %w", err)
		}

		if attempt < maxRetries && c.retryConfig.ShouldRetry(httpResp, nil) {
			lastErr = c.apiError(resp)
			continue
		}
		break
	}

	if resp == nil {
		return nil, lastErr
	}

	log.Debug("Request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", resp.Duration),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		log.Info("Session rejected by server, forcing logout")
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return resp, c.apiError(resp)
	}
	if resp.StatusCode >= 400 {
		return resp, c.apiError(resp)
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, queryParams map[string]string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:      http.MethodGet,
		Path:        path,
		QueryParams: queryParams,
	})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}

// buildURL resolves path against the base URL, keeping the base path prefix.
func (c *Client) buildURL(path string, queryParams map[string]string) (*url.URL, error) {
	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing path: %w", err)
	}
	u := c.baseURL.ResolveReference(rel)

	if len(queryParams) > 0 {
		q := u.Query()
		for k, v := range queryParams {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	return c.tokens.Token(ctx)
}

// setHeaders sets headers on the request.
func (c *Client) setHeaders(req *http.Request, customHeaders map[string]string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range customHeaders {
		req.Header.Set(k, v)
	}
}

func (c *Client) observe(method string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, status, d)
	}
}

// apiError builds an *APIError, pulling the server message when present.
func (c *Client) apiError(resp *Response) *APIError {
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    serverMessage(resp.Body),
		RequestID:  resp.RequestID,
		Body:       resp.Body,
	}
}

// calculateBackoff calculates the backoff delay for the given attempt.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.retryConfig.RetryDelay) * math.Pow(c.retryConfig.Multiplier, float64(attempt-1))
	if delay > float64(c.retryConfig.MaxDelay) {
		delay = float64(c.retryConfig.MaxDelay)
	}
	// jitter of +/-25%
	jitter := delay * 0.25
	delay = delay + (rand.Float64()*2-1)*jitter
	return time.Duration(delay)
}

// SetHeader sets a default header for all requests.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}
