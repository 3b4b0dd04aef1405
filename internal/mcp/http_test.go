package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAgainstHTTPHandler(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).HTTPHandler())
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	info, err := c.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test", info.ServerInfo.Name)
	assert.NotEmpty(t, c.sessionID)

	tools, err := c.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 2)

	res, err := c.CallTool(ctx, "sightings", json.RawMessage(`{"region_code":"MX","back":3}`))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"region":"MX","back":3,"dist":10}`, res.Text())

	res, err = c.CallTool(ctx, "broken", nil)
	require.NoError(t, err)
	assert.True(t, res.IsError)

	_, err = c.CallTool(ctx, "sightings", json.RawMessage(`{"region_code":"MX","back":99}`))
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, CodeInvalidParams, rpcErr.Code)
}

func TestHTTPUnknownSession(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).HTTPHandler())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	require.NoError(t, err)
	req.Header.Set(SessionHeader, "stale")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPSessionLifecycle(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).HTTPHandler())
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := resp.Header.Get(SessionHeader)
	require.NotEmpty(t, id)

	req, _ := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	req.Header.Set(SessionHeader, id)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	del, _ := http.NewRequest(http.MethodDelete, srv.URL, nil)
	del.Header.Set(SessionHeader, id)
	resp, err = http.DefaultClient.Do(del)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{"jsonrpc":"2.0","id":2,"method":"ping"}`))
	req.Header.Set(SessionHeader, id)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPMethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).HTTPHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHTTPParseError(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).HTTPHandler())
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(`{oops`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Error)
	assert.Equal(t, CodeParseError, body.Error.Code)
}
