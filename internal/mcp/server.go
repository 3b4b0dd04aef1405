package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/soyeahso/ebirdmcp/internal/logging"
)

// Server dispatches JSON-RPC requests to registered tools. It is safe for
// concurrent use once tools are registered.
type Server struct {
	info ServerInfo
	log  *logging.Logger

	mu    sync.RWMutex
	tools map[string]*toolEntry
	order []string
}

// NewServer creates a server with no tools.
func NewServer(name, version string, log *logging.Logger) *Server {
	return &Server{
		info:  ServerInfo{Name: name, Version: version},
		log:   log.Sub("mcp"),
		tools: make(map[string]*toolEntry),
	}
}

func (s *Server) register(e *toolEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tools[e.def.Name]; exists {
		return fmt.Errorf("mcp: tool %s already registered", e.def.Name)
	}
	s.tools[e.def.Name] = e
	s.order = append(s.order, e.def.Name)
	return nil
}

// Tools returns the registered tool definitions in registration order.
func (s *Server) Tools() []Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Tool, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.tools[name].def)
	}
	return out
}

// HandleMessage decodes one JSON-RPC message and returns the encoded
// response, or nil for notifications.
func (s *Server) HandleMessage(ctx context.Context, data []byte) []byte {
	var req JSONRPCRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.log.Warn().Err(err).Msg("parse error")
		return s.encode(errorResponse(nil, CodeParseError, "Parse error", err.Error()))
	}
	resp := s.Handle(ctx, &req)
	if resp == nil {
		return nil
	}
	return s.encode(resp)
}

// Handle dispatches a decoded request. Notifications yield nil.
func (s *Server) Handle(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	s.log.Debug().Str("method", req.Method).Interface("id", req.ID).Msg("handling request")

	if req.IsNotification() {
		if req.Method != "notifications/initialized" && req.Method != "notifications/cancelled" {
			s.log.Debug().Str("method", req.Method).Msg("ignoring notification")
		}
		return nil
	}

	switch req.Method {
	case "initialize":
		return result(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    Capabilities{Tools: map[string]any{}},
			ServerInfo:      s.info,
		})
	case "ping":
		return result(req.ID, map[string]any{})
	case "tools/list":
		return result(req.ID, ListToolsResult{Tools: s.Tools()})
	case "tools/call":
		return s.handleCallTool(ctx, req)
	default:
		s.log.Warn().Str("method", req.Method).Msg("unknown method")
		return errorResponse(req.ID, CodeMethodNotFound, "Method not found", fmt.Sprintf("Unknown method: %s", req.Method))
	}
}

func (s *Server) handleCallTool(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}

	s.mu.RLock()
	entry, ok := s.tools[params.Name]
	s.mu.RUnlock()
	if !ok {
		s.log.Warn().Str("tool", params.Name).Msg("unknown tool")
		return errorResponse(req.ID, CodeInvalidParams, "Unknown tool", fmt.Sprintf("Tool not found: %s", params.Name))
	}

	raw := params.Arguments
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := entry.validate(raw); err != nil {
		s.log.Info().Str("tool", params.Name).Err(err).Msg("rejected arguments")
		return errorResponse(req.ID, CodeInvalidParams, "Invalid arguments", err.Error())
	}

	start := time.Now()
	out, err := entry.call(ctx, raw)
	log := s.log.Info().Str("tool", params.Name).Dur("took", time.Since(start))
	if err != nil {
		var argErr *ArgumentsError
		if errors.As(err, &argErr) {
			log.Err(err).Msg("rejected arguments")
			return errorResponse(req.ID, CodeInvalidParams, "Invalid arguments", err.Error())
		}
		log.Err(err).Msg("tool failed")
		return result(req.ID, ToolResult{
			Content: []ContentItem{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
	}
	log.Msg("tool called")

	text, err := json.Marshal(out)
	if err != nil {
		return errorResponse(req.ID, CodeInternalError, "Internal error", err.Error())
	}
	return result(req.ID, ToolResult{Content: []ContentItem{{Type: "text", Text: string(text)}}})
}

func (s *Server) encode(resp *JSONRPCResponse) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal response")
		data, _ = json.Marshal(errorResponse(resp.ID, CodeInternalError, "Internal error", err.Error()))
	}
	return data
}

func result(id any, v any) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: v}
}

func errorResponse(id any, code int, message string, data any) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	}
}
