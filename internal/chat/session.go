// Package chat is a terminal client that lets a Gemini model answer birding
// questions by calling the tools of a running eBird MCP server.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/ebirdmcp/internal/llm"
	"github.com/soyeahso/ebirdmcp/internal/logging"
	"github.com/soyeahso/ebirdmcp/internal/mcp"
)

// DefaultMaxRounds bounds how many tool-call rounds one prompt may trigger.
const DefaultMaxRounds = 5

// ToolCaller is the part of the MCP client the session needs.
type ToolCaller interface {
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	CallTool(ctx context.Context, name string, args json.RawMessage) (*mcp.ToolResult, error)
}

// Options configures a Session.
type Options struct {
	MaxRounds int
	MaxTokens int
	Now       func() time.Time
	Logger    *logging.Logger
}

// Reply is the outcome of one prompt.
type Reply struct {
	Text      string
	ToolsUsed []string
	Usage     llm.Usage
	Duration  time.Duration
}

// Session holds the conversation history for one REPL run.
type Session struct {
	model     llm.Client
	tools     ToolCaller
	defs      []llm.ToolDefinition
	history   []llm.Message
	maxRounds int
	maxTokens int
	now       func() time.Time
	log       *logging.Logger
}

// NewSession fetches the server's tool list and prepares an empty conversation.
func NewSession(ctx context.Context, model llm.Client, tools ToolCaller, opts Options) (*Session, error) {
	list, err := tools.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	defs := make([]llm.ToolDefinition, len(list))
	for i, t := range list {
		defs[i] = llm.ToolDefinition{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
	}

	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	return &Session{
		model:     model,
		tools:     tools,
		defs:      defs,
		maxRounds: opts.MaxRounds,
		maxTokens: opts.MaxTokens,
		now:       opts.Now,
		log:       opts.Logger.Sub("chat"),
	}, nil
}

// Tools returns the tool definitions offered to the model.
func (s *Session) Tools() []llm.ToolDefinition { return s.defs }

// Send runs one prompt through the model, executing any tool calls it makes
// until it answers with text. A failed prompt leaves the history unchanged.
func (s *Session) Send(ctx context.Context, prompt string) (*Reply, error) {
	start := time.Now()
	mark := len(s.history)
	s.history = append(s.history, llm.Message{Role: llm.RoleUser, Content: prompt})

	reply := &Reply{}
	for round := 0; ; round++ {
		resp, err := s.model.Complete(ctx, llm.CompletionRequest{
			System:    s.systemPrompt(),
			Messages:  s.history,
			Tools:     s.defs,
			MaxTokens: s.maxTokens,
		})
		if err != nil {
			s.history = s.history[:mark]
			return nil, fmt.Errorf("%s completion: %w", s.model.Name(), err)
		}
		reply.Usage.InputTokens += resp.Usage.InputTokens
		reply.Usage.OutputTokens += resp.Usage.OutputTokens

		s.history = append(s.history, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		if len(resp.ToolCalls) == 0 {
			reply.Text = resp.Content
			break
		}
		if round+1 >= s.maxRounds {
			s.history = s.history[:mark]
			return nil, fmt.Errorf("no answer after %d tool rounds", s.maxRounds)
		}

		s.log.Debug().Int("round", round).Int("toolCalls", len(resp.ToolCalls)).Msg("executing tool calls")

		results := make([]llm.ToolResult, len(resp.ToolCalls))
		for i, call := range resp.ToolCalls {
			results[i] = s.execute(ctx, call)
			reply.ToolsUsed = append(reply.ToolsUsed, call.Name)
		}
		s.history = append(s.history, llm.Message{Role: llm.RoleTool, ToolResults: results})
	}

	reply.Duration = time.Since(start)
	s.log.Info().
		Int("inputTokens", reply.Usage.InputTokens).
		Int("outputTokens", reply.Usage.OutputTokens).
		Strs("tools", reply.ToolsUsed).
		Dur("duration", reply.Duration).
		Msg("response generated")
	return reply, nil
}

// execute never fails: protocol errors are handed back to the model so it
// can correct its arguments.
func (s *Session) execute(ctx context.Context, call llm.ToolCall) llm.ToolResult {
	args := json.RawMessage(call.Input)
	if strings.TrimSpace(call.Input) == "" {
		args = json.RawMessage(`{}`)
	}

	res, err := s.tools.CallTool(ctx, call.Name, args)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", call.Name).Msg("tool call failed")
		return llm.ToolResult{Name: call.Name, Content: err.Error(), IsError: true}
	}
	if res.IsError {
		s.log.Warn().Str("tool", call.Name).Str("error", res.Text()).Msg("tool reported error")
	}
	return llm.ToolResult{Name: call.Name, Content: res.Text(), IsError: res.IsError}
}

func (s *Session) systemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current date: %s\n\n", s.now().Format("2006-01-02"))
	b.WriteString("You answer questions about birds using live eBird data.\n")
	b.WriteString("Guidelines:\n")
	b.WriteString("- Use the eBird tools rather than guessing sightings or hotspots.\n")
	b.WriteString("- Tools take species codes; look one up with get_ebird_species_code when the user gives a common name.\n")
	b.WriteString("- Region codes look like US, US-NY or US-NY-109.\n")
	b.WriteString("- Format answers with markdown when helpful.\n")
	return b.String()
}
