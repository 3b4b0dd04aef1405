package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionHeader carries the session id assigned at initialize.
const SessionHeader = "Mcp-Session-Id"

const maxBodySize = 4 * 1024 * 1024

type httpHandler struct {
	srv *Server

	mu       sync.Mutex
	sessions map[string]time.Time
}

// HTTPHandler returns the streamable-HTTP endpoint. Each POST carries one
// JSON-RPC message; responses are plain application/json. A successful
// initialize opens a session; later requests naming an unknown session get
// 404 so the client re-initializes.
func (s *Server) HTTPHandler() http.Handler {
	return &httpHandler{srv: s, sessions: make(map[string]time.Time)}
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.post(w, r)
	case http.MethodDelete:
		id := r.Header.Get(SessionHeader)
		h.mu.Lock()
		_, ok := h.sessions[id]
		delete(h.sessions, id)
		h.mu.Unlock()
		if !ok {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *httpHandler) post(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(nil, CodeParseError, "Parse error", err.Error()))
		return
	}

	sessionID := r.Header.Get(SessionHeader)
	if req.Method != "initialize" && sessionID != "" && !h.known(sessionID) {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	resp := h.srv.Handle(r.Context(), &req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if req.Method == "initialize" && resp.Error == nil {
		sessionID = uuid.NewString()
		h.mu.Lock()
		h.sessions[sessionID] = time.Now()
		h.mu.Unlock()
		h.srv.log.Info().Str("session", sessionID).Msg("session opened")
	}
	if sessionID != "" {
		w.Header().Set(SessionHeader, sessionID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) known(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.sessions[id]
	return ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves the HTTP transport at addr under /mcp until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, opts HTTPOptions) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", s.HTTPHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           withMiddleware(mux, s.log, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Bool("auth", opts.Token != "").Msg("listening for MCP over HTTP")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down HTTP transport")
		return httpServer.Shutdown(shutdownCtx)
	}
}
