// Package apiclient is the single HTTP entry point to the blog backend.
// It resolves paths against a base URL, attaches the session's bearer token
// to every request, maps failures to typed errors and reacts globally to
// expired credentials.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 10 << 20

// TokenSource supplies the bearer token for outgoing requests. An empty
// token means the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// UnauthorizedHandler is invoked synchronously on every 401 response, before
// the error is returned to the caller.
type UnauthorizedHandler interface {
	HandleUnauthorized(ctx context.Context)
}

// UnauthorizedFunc adapts a function to UnauthorizedHandler.
type UnauthorizedFunc func(ctx context.Context)

// HandleUnauthorized calls f(ctx).
func (f UnauthorizedFunc) HandleUnauthorized(ctx context.Context) { f(ctx) }

// Client performs JSON and multipart requests against the backend.
type Client struct {
	baseURL        *url.URL
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	reads          *http.Client // GET: retried on transient failures
	writes         *http.Client // everything else: sent exactly once
	limiter        *rate.Limiter
	logger         *slog.Logger
	userAgent      string
}

type options struct {
	httpClient     *http.Client
	onUnauthorized UnauthorizedHandler
	limiter        *rate.Limiter
	logger         *slog.Logger
	userAgent      string
	timeout        time.Duration
	retryMax       int
	retryWaitMin   time.Duration
	retryWaitMax   time.Duration
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTimeout sets the per-attempt timeout when no custom client is given.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetry configures retries for GET requests. max 0 disables them.
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(o *options) {
		o.retryMax = max
		o.retryWaitMin = waitMin
		o.retryWaitMax = waitMax
	}
}

// WithRateLimit throttles outgoing requests. rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		if rps <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUnauthorizedHandler installs the global 401 reaction.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(o *options) { o.onUnauthorized = h }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// New creates a client for baseURL (for example "http://localhost:5000/api").
// tokens may be nil for a client that never authenticates.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid baseURL: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid baseURL: missing host")
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	o := options{
		timeout:      30 * time.Second,
		retryMax:     2,
		retryWaitMin: 200 * time.Millisecond,
		retryWaitMax: 2 * time.Second,
		userAgent:    "inkwell",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	base := o.httpClient
	if base == nil {
		base = &http.Client{Timeout: o.timeout}
	}

	reads := base
	if o.retryMax > 0 {
		rc := retryablehttp.NewClient()
		rc.HTTPClient = base
		rc.RetryMax = o.retryMax
		rc.RetryWaitMin = o.retryWaitMin
		rc.RetryWaitMax = o.retryWaitMax
		rc.Logger = o.logger
		// Hand the final response back instead of a generic "giving up"
		// error so status mapping still applies after retries run out.
		rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
		reads = rc.StandardClient()
	}

	return &Client{
		baseURL:        u,
		tokens:         tokens,
		onUnauthorized: o.onUnauthorized,
		reads:          reads,
		writes:         base,
		limiter:        o.limiter,
		logger:         o.logger,
		userAgent:      o.userAgent,
	}, nil
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// RequestOption adjusts a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	query  url.Values
	header http.Header
}

// WithQuery adds query parameters.
func WithQuery(q url.Values) RequestOption {
	return func(rc *requestConfig) {
		for k, vs := range q {
			for _, v := range vs {
				rc.query.Add(k, v)
			}
		}
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) { rc.header.Set(key, value) }
}

// Get issues a GET and decodes the JSON response into out (if non-nil).
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST with body (JSON value or *Multipart).
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put issues a PUT with body (JSON value or *Multipart).
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// Do performs a request. body may be nil, a *Multipart, or any value that
// encodes to JSON.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	rc := requestConfig{query: url.Values{}, header: http.Header{}}
	for _, opt := range opts {
		opt(&rc)
	}

	req, err := c.newRequest(ctx, method, path, body, rc)
	if err != nil {
		return err
	}
	requestID := req.Header.Get("X-Request-ID")

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Kind: ErrNetwork, Err: err, Method: method, Path: path}
		}
	}

	hc := c.writes
	if method == http.MethodGet {
		hc = c.reads
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", method, "path", path, "request_id", requestID, "error", err)
		return &Error{Kind: ErrNetwork, Err: err, Method: method, Path: path}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID)

	if kind := kindForStatus(resp.StatusCode); kind != nil {
		apiErr := &Error{
			Kind:       kind,
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    extractMessage(data),
		}
		if errors.Is(kind, ErrAuthExpired) && c.onUnauthorized != nil {
			c.onUnauthorized.HandleUnauthorized(ctx)
		}
		return apiErr
	}

	if readErr != nil {
		return &Error{Kind: ErrNetwork, Err: readErr, Method: method, Path: path, StatusCode: resp.StatusCode}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: ErrDecode, Err: err, Method: method, Path: path, StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, rc requestConfig) (*http.Request, error) {
	target, err := c.resolve(path, rc.query)
	if err != nil {
		return nil, err
	}

	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *Multipart:
		reader, contentType, err = b.encode()
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode form: %w", method, path, err)
		}
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: create request: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, vs := range rc.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + rel.Path
	if rel.RawPath != "" {
		u.RawPath = c.baseURL.EscapedPath() + "/" + rel.RawPath
	} else {
		u.RawPath = ""
	}

	q := rel.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// extractMessage pulls a human readable message out of an error body:
// {"message": ...}, then {"error": ...}, then the raw text.
func extractMessage(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if data[0] == '{' {
		if err := json.Unmarshal(data, &payload); err == nil {
			if payload.Message != "" {
				return payload.Message
			}
			return payload.Error
		}
	}

	const maxText = 200
	text := string(data)
	if len(text) > maxText {
		text = text[:maxText]
	}
	return text
}
