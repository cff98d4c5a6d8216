// Package server is the thin HTTP surface over the workflow. Workflow-internal
// failures never become 5xx responses; they arrive here already rendered as
// summary text.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chat-agent/internal/common/logger"
	"chat-agent/internal/common/validation"
	"chat-agent/internal/models"
)

const maxBodyBytes = 1 << 20

// Workflow runs one request end to end and always returns a terminal state.
type Workflow interface {
	Run(ctx context.Context, rawInput, replyTo string) *models.ConversationState
}

// WebTool backs the standalone search endpoint.
type WebTool interface {
	Invoke(ctx context.Context, query string) string
}

type Server struct {
	workflow Workflow
	webTool  WebTool
	logger   logger.Logger
}

func NewServer(workflow Workflow, webTool WebTool, log logger.Logger) *Server {
	return &Server{
		workflow: workflow,
		webTool:  webTool,
		logger:   log,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Post("/agent-chat", s.handleAgentChat)
	r.Post("/chat", s.handleChat)
	r.Post("/search-and-summarize", s.handleSearchAndSummarize)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func (s *Server) handleAgentChat(w http.ResponseWriter, r *http.Request) {
	var req models.AgentChatRequest
	if !s.decodeAndValidate(w, r, agentChatSchema, &req) {
		return
	}

	state := s.workflow.Run(r.Context(), req.EmailContent, req.ReplyTo)
	s.writeJSON(w, http.StatusOK, models.AgentChatResponse{
		Summary:    state.Summary,
		FullResult: *state,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !s.decodeAndValidate(w, r, chatSchema, &req) {
		return
	}

	state := s.workflow.Run(r.Context(), req.Query, "")
	s.writeJSON(w, http.StatusOK, models.ChatResponse{Summary: state.Summary})
}

func (s *Server) handleSearchAndSummarize(w http.ResponseWriter, r *http.Request) {
	var req models.SearchAndSummarizeRequest
	if !s.decodeAndValidate(w, r, chatSchema, &req) {
		return
	}

	summary := s.webTool.Invoke(r.Context(), req.Query)
	s.writeJSON(w, http.StatusOK, models.ChatResponse{Summary: summary})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeAndValidate reads the body, checks it against the schema, and decodes
// into dst. Malformed payloads are a caller error and get a 400; they are the
// one case that is not folded into a summary string.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, schema string, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := validation.ValidateJSON(schema, body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
