// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway is the typed HTTP boundary over the review backend. Every
// remote operation (search, suggestions, enrichment, chat, full text, login)
// goes through a Client and fails with a *Failure rather than a raw
// transport error, so callers can treat all remote trouble uniformly.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/review-engine/internal/httputil"
	"github.com/pdiddy/review-engine/pkg/types"
)

// defaultBaseURL is the backend root used when config leaves it empty.
// Declared as a var so tests can substitute an httptest server.
var defaultBaseURL = "http://localhost:8000"

const defaultTimeout = 30 * time.Second

// ErrUnauthorized is wrapped into a Failure on HTTP 401 so callers can
// branch to re-authentication and retry the originating intent.
var ErrUnauthorized = errors.New("unauthorized")

// Failure is the uniform error for transport and non-2xx conditions.
type Failure struct {
	// Message is the human-readable description, taken from the backend's
	// error detail when available.
	Message string

	// StatusCode is the HTTP status, or 0 for transport-level failures.
	StatusCode int

	err error
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("backend returned HTTP %d: %s", f.StatusCode, f.Message)
	}
	return f.Message
}

func (f *Failure) Unwrap() error { return f.err }

// Client issues typed requests against the review backend. It is safe for
// concurrent use; independent enrichment calls are expected to be in flight
// simultaneously.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxRetries int

	mu    sync.RWMutex
	token string
}

// New builds a Client from config, applying defaults for base URL and timeout.
func New(cfg types.GatewayConfig) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
	}
}

// SetToken installs the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the currently installed bearer token, or "".
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// getJSON issues a GET to path with query parameters and decodes the JSON
// response into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &Failure{Message: fmt.Sprintf("creating request: %v", err), err: err}
	}
	return c.do(req, out)
}

// postJSON issues a POST with a JSON body to path and decodes the JSON
// response into out.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &Failure{Message: fmt.Sprintf("encoding request: %v", err), err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Failure{Message: fmt.Sprintf("creating request: %v", err), err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httputil.DoWithRetry(req.Context(), c.httpClient, req, c.maxRetries)
	if err != nil {
		return &Failure{Message: fmt.Sprintf("request failed: %v", err), err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f := &Failure{
			Message:    errorDetail(resp),
			StatusCode: resp.StatusCode,
		}
		if resp.StatusCode == http.StatusUnauthorized {
			f.err = ErrUnauthorized
		}
		return f
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Failure{Message: fmt.Sprintf("parsing response: %v", err), err: err}
	}
	return nil
}

// errorDetail extracts the backend's error message from a non-2xx body.
// The backend reports errors as {"detail": "..."}.
func errorDetail(resp *http.Response) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return http.StatusText(resp.StatusCode)
}
