// Package client is a Go SDK for the HanDoc API, used by the handoc CLI.
package client

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
)

const apiPrefix = "/api/v1"

// Client talks to a HanDoc server. It is safe for concurrent use.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	session        *SessionStore
	onUnauthorized func()

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout. The client in use is copied first,
// so one passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		hc := *client.httpClient
		hc.Timeout = d
		client.httpClient = &hc
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(client *Client) {
		client.token = token
	}
}

// WithSession persists tokens through s. A stored access token is used unless
// WithToken supplied one.
func WithSession(s *SessionStore) Option {
	return func(client *Client) {
		client.session = s
	}
}

// WithUnauthorizedHandler is called after any 401 response, once the local
// token has been cleared.
func WithUnauthorizedHandler(fn func()) Option {
	return func(client *Client) {
		client.onUnauthorized = fn
	}
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.token == "" && c.session != nil {
		sess, err := c.session.Load()
		if err != nil {
			return nil, err
		}
		c.token = sess.AccessToken
	}
	return c, nil
}

// Token returns the current access token, or "".
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// clearAuth forgets the token locally and in the persisted session.
func (c *Client) clearAuth() error {
	c.setToken("")
	if c.session != nil {
		return c.session.ClearAuth()
	}
	return nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doJSON sends body (if any) as JSON and decodes the response into result.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, result any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), r)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, result)
}

// do performs req with the bearer token and decodes a JSON response.
// A 401 clears the token and invokes the unauthorized handler.
func (c *Client) do(req *http.Request, result any) error {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newError(resp.StatusCode, body)
		if resp.StatusCode == http.StatusUnauthorized {
			clearErr := c.clearAuth()
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
			if clearErr != nil {
				return errors.Join(apiErr, fmt.Errorf("clear session: %w", clearErr))
			}
		}
		return apiErr
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
