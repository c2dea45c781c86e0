// Package api is the HTTP facade over the routing orchestrator. It owns
// request validation, model allowlisting, per-request timeouts and the
// response envelope; everything semantic happens in routing.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sage-x-project/chat-router/config"
	"github.com/sage-x-project/chat-router/logger"
	"github.com/sage-x-project/chat-router/routing"
	"github.com/sage-x-project/chat-router/types"
)

// Server serves the router's HTTP endpoints.
type Server struct {
	orchestrator *routing.Orchestrator
	cfg          *config.Config
	log          *logger.Logger
	httpServer   *http.Server
}

// NewServer builds the HTTP facade.
func NewServer(orchestrator *routing.Orchestrator, cfg *config.Config, log *logger.Logger) *Server {
	return &Server{
		orchestrator: orchestrator,
		cfg:          cfg,
		log:          log.WithComponent("api"),
	}
}

// Handler returns the full route table wrapped in CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/healthz", s.handleHealth)
	return s.corsMiddleware(mux)
}

// Start begins listening. Non-blocking; errors surface via the logger.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler: s.Handler(),
	}
	go func() {
		s.log.Infof("http server listening on port %d", s.cfg.Server.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("http server failed", err)
		}
	}()
	return nil
}

// Stop closes the listener.
func (s *Server) Stop() error {
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// handleAsk serves POST /ask: one utterance through the full decision
// pipeline. The body is parsed tolerantly: JSON first, then plain text.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rawIn, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()

	var req types.AskRequest
	if len(rawIn) > 0 {
		if err := json.Unmarshal(rawIn, &req); err != nil || req.Question == "" {
			req.Question = strings.TrimSpace(string(rawIn))
			req.Model = ""
		}
	}

	model, err := s.resolveModel(req.Model)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	requestID := uuid.New().String()
	start := time.Now()
	ctx, cancel := s.requestContext(r, requestID)
	defer cancel()

	response := s.orchestrator.Handle(ctx, req.Question, string(model))
	response.Metadata = &types.ResponseMetadata{
		RequestID:        requestID,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Timestamp:        time.Now().Format(time.RFC3339),
	}

	s.log.WithField("request_id", requestID).Infof("ask intent=%s verdict=%s", response.Intent, response.Moderation.Verdict)
	s.writeJSON(w, http.StatusOK, response)
}

// handleChat serves POST /chat: a multi-turn conversation whose final
// message must come from the user.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Messages) == 0 {
		s.writeError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}
	if last := req.Messages[len(req.Messages)-1]; last.Role != "user" {
		s.writeError(w, http.StatusBadRequest, "last message must be from the user")
		return
	}

	model, err := s.resolveModel(req.Model)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	requestID := uuid.New().String()
	start := time.Now()
	ctx, cancel := s.requestContext(r, requestID)
	defer cancel()

	response := s.orchestrator.HandleChat(ctx, req.Messages, string(model))
	response.Metadata = &types.ResponseMetadata{
		RequestID:        requestID,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Timestamp:        time.Now().Format(time.RFC3339),
	}

	s.log.WithField("request_id", requestID).Infof("chat intent=%s verdict=%s", response.Intent, response.Moderation.Verdict)
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveModel validates a request's model against the allowlist. An
// absent model falls back to the operator-configured default.
func (s *Server) resolveModel(requested string) (config.ModelID, error) {
	if strings.TrimSpace(requested) == "" {
		requested = s.cfg.LLM.DefaultModel
	}
	return config.ResolveModel(requested)
}

func (s *Server) requestContext(r *http.Request, requestID string) (ctx context.Context, cancel context.CancelFunc) {
	timeout := time.Duration(s.cfg.Server.RequestTimeoutSeconds) * time.Second
	ctx, cancel = context.WithTimeout(r.Context(), timeout)
	ctx = routing.WithRequestID(ctx, requestID)
	return ctx, cancel
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
