package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Client calls tools on a remote server over the HTTP transport.
type Client struct {
	url   string
	token string
	http  *http.Client
	seq   atomic.Int64

	mu        sync.Mutex
	sessionID string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBearerToken sends token in the Authorization header.
func WithBearerToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// NewClient creates a client for the endpoint at url (e.g. http://host:8000/mcp).
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:  url,
		http: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize performs the MCP handshake and records the session id.
func (c *Client) Initialize(ctx context.Context) (*InitializeResult, error) {
	params := map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "ebird-mcp-chat", "version": "1.0.0"},
	}
	var out InitializeResult
	if err := c.call(ctx, "initialize", params, &out); err != nil {
		return nil, err
	}
	if err := c.notify(ctx, "notifications/initialized"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTools returns the server's tool definitions.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	var out ListToolsResult
	if err := c.call(ctx, "tools/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Tools, nil
}

// CallTool invokes a tool. Tool-level failures come back as a result with
// IsError set; protocol failures are returned as *RPCError.
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error) {
	var out ToolResult
	if err := c.call(ctx, "tools/call", CallToolParams{Name: name, Arguments: args}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	req := map[string]any{"jsonrpc": "2.0", "id": c.seq.Add(1), "method": method}
	if params != nil {
		req["params"] = params
	}
	body, err := c.post(ctx, req)
	if err != nil {
		return err
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("mcp: %s: decode response: %w", method, err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("mcp: %s: decode result: %w", method, err)
	}
	return nil
}

func (c *Client) notify(ctx context.Context, method string) error {
	_, err := c.post(ctx, map[string]any{"jsonrpc": "2.0", "method": method})
	return err
}

func (c *Client) post(ctx context.Context, msg any) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("mcp: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.Lock()
	if c.sessionID != "" {
		httpReq.Header.Set(SessionHeader, c.sessionID)
	}
	c.mu.Unlock()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mcp: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mcp: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("mcp: HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	if id := resp.Header.Get(SessionHeader); id != "" {
		c.mu.Lock()
		c.sessionID = id
		c.mu.Unlock()
	}
	return body, nil
}
