// Package ebird is a thin HTTP client for the eBird API 2.0.
//
// Every method is a pass-through: it checks its primitive arguments, issues
// one GET request and returns the decoded JSON unchanged. Records and Record
// are left as generic maps so callers see exactly what eBird returned.
package ebird

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soyeahso/ebirdmcp/internal/logging"
	"github.com/soyeahso/ebirdmcp/internal/version"
)

// DefaultBaseURL is the production eBird API root.
const DefaultBaseURL = "https://api.ebird.org/v2"

// Record is a single decoded JSON object from eBird.
type Record = map[string]any

// Records is a decoded JSON array of objects from eBird.
type Records = []map[string]any

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ebird: %s: HTTP %d: %s", e.Path, e.StatusCode, strings.TrimSpace(e.Body))
}

// Client talks to the eBird API with a single API token.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *logging.Logger) Option {
	return func(c *Client) { c.log = log.Sub("ebird") }
}

// NewClient creates a client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("ebird: create request: %w", err)
	}
	req.Header.Set("X-eBirdApiToken", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ebird: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ebird: %s: read body: %w", path, err)
	}

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("took", time.Since(start)).
		Msg("upstream request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Path: path, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("ebird: %s: decode response: %w", path, err)
	}
	return nil
}

func (c *Client) records(ctx context.Context, path string, query url.Values) (Records, error) {
	var out Records
	if err := c.get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Records{}
	}
	return out, nil
}

func (c *Client) record(ctx context.Context, path string, query url.Values) (Record, error) {
	var out Record
	if err := c.get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// seg escapes a caller-supplied path segment.
func seg(s string) string {
	return url.PathEscape(s)
}
