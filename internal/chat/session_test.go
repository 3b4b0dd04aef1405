package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/ebirdmcp/internal/llm"
	"github.com/soyeahso/ebirdmcp/internal/logging"
	"github.com/soyeahso/ebirdmcp/internal/mcp"
)

type fakeTools struct {
	tools   []mcp.Tool
	calls   []string
	args    []string
	results map[string]*mcp.ToolResult
	err     error
}

func (f *fakeTools) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tools, nil
}

func (f *fakeTools) CallTool(ctx context.Context, name string, args json.RawMessage) (*mcp.ToolResult, error) {
	f.calls = append(f.calls, name)
	f.args = append(f.args, string(args))
	if res, ok := f.results[name]; ok {
		return res, nil
	}
	return nil, &mcp.RPCError{Code: mcp.CodeInvalidParams, Message: "Unknown tool: " + name}
}

func textResult(s string, isErr bool) *mcp.ToolResult {
	return &mcp.ToolResult{Content: []mcp.ContentItem{{Type: "text", Text: s}}, IsError: isErr}
}

// scripted returns the given responses in order.
func scripted(t *testing.T, responses ...*llm.CompletionResponse) (*llm.MockClient, *[]llm.CompletionRequest) {
	t.Helper()
	var seen []llm.CompletionRequest
	m := &llm.MockClient{ProviderName: "mock"}
	m.CompleteFunc = func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
		msgs := append([]llm.Message(nil), req.Messages...)
		req.Messages = msgs
		seen = append(seen, req)
		require.Less(t, len(seen)-1, len(responses), "unexpected extra completion")
		return responses[len(seen)-1], nil
	}
	return m, &seen
}

func fixedNow() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }

func TestNewSessionConvertsTools(t *testing.T) {
	ft := &fakeTools{tools: []mcp.Tool{{
		Name:        "get_ebird_species_code",
		Description: "Find a species code",
		InputSchema: map[string]any{"type": "object"},
	}}}
	s, err := NewSession(context.Background(), &llm.MockClient{}, ft, Options{})
	require.NoError(t, err)

	require.Len(t, s.Tools(), 1)
	assert.Equal(t, "get_ebird_species_code", s.Tools()[0].Name)
	assert.Equal(t, "Find a species code", s.Tools()[0].Description)
	assert.Equal(t, DefaultMaxRounds, s.maxRounds)
}

func TestNewSessionListFailure(t *testing.T) {
	_, err := NewSession(context.Background(), &llm.MockClient{}, &fakeTools{err: errors.New("connection refused")}, Options{})
	assert.ErrorContains(t, err, "listing tools")
}

func TestSendPlainAnswer(t *testing.T) {
	model, seen := scripted(t, &llm.CompletionResponse{Content: "Hello birder", Usage: llm.Usage{InputTokens: 3, OutputTokens: 2}})
	s, err := NewSession(context.Background(), model, &fakeTools{}, Options{Now: fixedNow})
	require.NoError(t, err)

	reply, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello birder", reply.Text)
	assert.Empty(t, reply.ToolsUsed)
	assert.Equal(t, 3, reply.Usage.InputTokens)

	require.Len(t, *seen, 1)
	assert.Contains(t, (*seen)[0].System, "Current date: 2026-05-01")
	assert.Len(t, s.history, 2)
}

func TestSendExecutesToolCalls(t *testing.T) {
	ft := &fakeTools{results: map[string]*mcp.ToolResult{
		"get_ebird_species_code": textResult(`{"found":true,"speciesCode":"horlar","comName":"Horned Lark"}`, false),
	}}
	model, seen := scripted(t,
		&llm.CompletionResponse{ToolCalls: []llm.ToolCall{{ID: "call_0", Name: "get_ebird_species_code", Input: `{"common_name":"horned lark"}`}}, Usage: llm.Usage{InputTokens: 10}},
		&llm.CompletionResponse{Content: "The code is **horlar**.", Usage: llm.Usage{InputTokens: 20}},
	)
	s, err := NewSession(context.Background(), model, ft, Options{})
	require.NoError(t, err)

	reply, err := s.Send(context.Background(), "species code for horned lark?")
	require.NoError(t, err)
	assert.Equal(t, "The code is **horlar**.", reply.Text)
	assert.Equal(t, []string{"get_ebird_species_code"}, reply.ToolsUsed)
	assert.Equal(t, 30, reply.Usage.InputTokens)
	assert.Equal(t, []string{`{"common_name":"horned lark"}`}, ft.args)

	require.Len(t, *seen, 2)
	second := (*seen)[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, llm.RoleTool, second[2].Role)
	assert.False(t, second[2].ToolResults[0].IsError)
	assert.Contains(t, second[2].ToolResults[0].Content, "horlar")
}

func TestSendFeedsToolErrorsBack(t *testing.T) {
	ft := &fakeTools{results: map[string]*mcp.ToolResult{
		"get_ebird_hotspot_info": textResult("eBird API error: 503", true),
	}}
	model, seen := scripted(t,
		&llm.CompletionResponse{ToolCalls: []llm.ToolCall{
			{Name: "get_ebird_hotspot_info", Input: `{"loc_id":"L99381"}`},
			{Name: "no_such_tool"},
		}},
		&llm.CompletionResponse{Content: "eBird is unavailable right now."},
	)
	s, err := NewSession(context.Background(), model, ft, Options{})
	require.NoError(t, err)

	reply, err := s.Send(context.Background(), "tell me about L99381")
	require.NoError(t, err)
	assert.Equal(t, "eBird is unavailable right now.", reply.Text)
	assert.Equal(t, []string{"{\"loc_id\":\"L99381\"}", "{}"}, ft.args)

	results := (*seen)[1].Messages[2].ToolResults
	require.Len(t, results, 2)
	assert.True(t, results[0].IsError)
	assert.Equal(t, "eBird API error: 503", results[0].Content)
	assert.True(t, results[1].IsError)
	assert.Contains(t, results[1].Content, "Unknown tool")
}

func TestSendStopsAfterMaxRounds(t *testing.T) {
	loop := &llm.CompletionResponse{ToolCalls: []llm.ToolCall{{Name: "get_ebird_regions", Input: `{}`}}}
	ft := &fakeTools{results: map[string]*mcp.ToolResult{"get_ebird_regions": textResult("[]", false)}}
	model, seen := scripted(t, loop, loop)
	s, err := NewSession(context.Background(), model, ft, Options{MaxRounds: 2})
	require.NoError(t, err)

	_, err = s.Send(context.Background(), "loop forever")
	assert.ErrorContains(t, err, "no answer after 2 tool rounds")
	assert.Len(t, *seen, 2)
	assert.Empty(t, s.history)
}

func TestSendCompletionErrorRollsBack(t *testing.T) {
	model := &llm.MockClient{ProviderName: "gemini", CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return nil, &llm.ProviderError{Provider: "gemini", Code: 429, Message: "quota"}
	}}
	s, err := NewSession(context.Background(), model, &fakeTools{}, Options{})
	require.NoError(t, err)

	_, err = s.Send(context.Background(), "hi")
	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 429, perr.Code)
	assert.Empty(t, s.history)
}

func TestSessionAgainstMCPServer(t *testing.T) {
	type lookupArgs struct {
		CommonName string `json:"common_name" jsonschema:"description=Common name"`
	}
	srv := mcp.NewServer("ebird-mcp", "test", logging.Nop())
	require.NoError(t, mcp.AddTool(srv, "get_ebird_species_code", "Find a species code", func(ctx context.Context, a lookupArgs) (any, error) {
		return map[string]any{"found": true, "speciesCode": "horlar", "comName": a.CommonName}, nil
	}))
	hs := httptest.NewServer(srv.HTTPHandler())
	defer hs.Close()

	client := mcp.NewClient(hs.URL)
	_, err := client.Initialize(context.Background())
	require.NoError(t, err)

	model, seen := scripted(t,
		&llm.CompletionResponse{ToolCalls: []llm.ToolCall{{Name: "get_ebird_species_code", Input: `{"common_name":"Horned Lark"}`}}},
		&llm.CompletionResponse{Content: "horlar"},
	)
	s, err := NewSession(context.Background(), model, client, Options{})
	require.NoError(t, err)
	require.Len(t, s.Tools(), 1)

	reply, err := s.Send(context.Background(), "code?")
	require.NoError(t, err)
	assert.Equal(t, "horlar", reply.Text)

	res := (*seen)[1].Messages[2].ToolResults[0]
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"found":true,"speciesCode":"horlar","comName":"Horned Lark"}`, res.Content)
}
