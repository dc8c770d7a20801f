// Package apiclient is the single chokepoint for calls to the storefront API.
// It attaches the current bearer token to every request and maps failures
// onto the domain error kinds.
package apiclient

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
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// CartSessionHeader carries the guest cart id between client and server
const CartSessionHeader = "X-Cart-Session"

// UnauthorizedFunc is called when a request that carried token gets a 401
type UnauthorizedFunc func(ctx context.Context, token string)

// Client is the HTTP facade
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    domain.TokenSource
	logger    *zap.Logger
	userAgent string

	mu             sync.RWMutex
	onUnauthorized UnauthorizedFunc
	cartSession    string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a facade for baseURL (e.g. http://localhost:8001/api).
// tokens is consulted on every request.
func New(baseURL string, tokens domain.TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}
	if tokens == nil {
		return nil, errors.New("token source is required")
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: 15 * time.Second},
		tokens:    tokens,
		logger:    zap.NewNop(),
		userAgent: "storefront-client/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OnUnauthorized registers the hook fired on 401 responses to
// authenticated requests. Only one hook is kept.
func (c *Client) OnUnauthorized(fn UnauthorizedFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// CartSession returns the guest cart id last issued by the server
func (c *Client) CartSession() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cartSession
}

// SetCartSession restores a guest cart id persisted by an earlier run
func (c *Client) SetCartSession(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cartSession = id
}

// ResetCartSession forgets the guest cart id
func (c *Client) ResetCartSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cartSession = ""
}

type requestOptions struct {
	anonymous bool
	query     url.Values
}

// RequestOption tweaks a single request
type RequestOption func(*requestOptions)

// Anonymous sends the request without the bearer header
func Anonymous() RequestOption {
	return func(o *requestOptions) { o.anonymous = true }
}

// Query adds query parameters
func Query(q url.Values) RequestOption {
	return func(o *requestOptions) { o.query = q }
}

// Get issues a GET and decodes the response into out
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put issues a PUT with a JSON body
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

// Delete issues a DELETE
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// Do performs one request. The bearer token is read from the token source
// while the request is being built, never cached. Errors are *domain.APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}
	op := method + " " + path

	req, token, err := c.newRequest(ctx, method, path, body, o)
	if err != nil {
		return &domain.APIError{Op: op, Detail: err.Error(), Kind: domain.ErrValidation}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("op", op), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &domain.APIError{Op: op, Detail: ctxErr.Error(), Kind: fmt.Errorf("%w: %w", domain.ErrNetwork, ctxErr)}
		}
		return &domain.APIError{Op: op, Detail: err.Error(), Kind: domain.ErrNetwork}
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Bool("authenticated", token != ""),
		zap.Duration("elapsed", time.Since(start)))

	if sid := resp.Header.Get(CartSessionHeader); sid != "" {
		c.mu.Lock()
		c.cartSession = sid
		c.mu.Unlock()
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.APIError{Op: op, Status: resp.StatusCode, Detail: err.Error(), Kind: domain.ErrNetwork}
	}

	if kind := domain.KindForStatus(resp.StatusCode); kind != nil {
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			c.fireUnauthorized(ctx, token)
		}
		return &domain.APIError{Op: op, Status: resp.StatusCode, Detail: errorDetail(payload), Kind: kind}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &domain.APIError{Op: op, Status: resp.StatusCode, Detail: "malformed response: " + err.Error(), Kind: domain.ErrServer}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, o requestOptions) (*http.Request, string, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if o.query != nil {
		u.RawQuery = o.query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("could not encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid := c.CartSession(); sid != "" {
		req.Header.Set(CartSessionHeader, sid)
	}

	var token string
	if !o.anonymous {
		if t, ok := c.tokens.Read(ctx); ok {
			token = t
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, token, nil
}

func (c *Client) fireUnauthorized(ctx context.Context, token string) {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn(ctx, token)
	}
}

// errorDetail extracts the reason from {"detail": "..."} or {"error": "..."}
func errorDetail(payload []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return strings.TrimSpace(string(payload))
	}
	if len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}
		return string(body.Detail)
	}
	return body.Error
}
