package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-agent/internal/common/logger"
	"chat-agent/internal/models"
)

type fakeWorkflow struct {
	state     *models.ConversationState
	lastInput string
	lastReply string
}

func (w *fakeWorkflow) Run(ctx context.Context, rawInput, replyTo string) *models.ConversationState {
	w.lastInput = rawInput
	w.lastReply = replyTo
	state := *w.state
	state.RawInput = rawInput
	return &state
}

type fakeWebTool struct {
	summary string
}

func (t *fakeWebTool) Invoke(ctx context.Context, query string) string {
	return t.summary
}

func newTestServer(t *testing.T) (*Server, *fakeWorkflow, *fakeWebTool) {
	t.Helper()
	workflow := &fakeWorkflow{state: &models.ConversationState{
		RunID:         "run-1",
		ResolvedQuery: "how many servers?",
		Summary:       "There are 12 servers.",
		Route:         models.RouteStructuredQuery,
	}}
	webTool := &fakeWebTool{summary: "Pizza comes from Naples."}
	return NewServer(workflow, webTool, logger.NewTestLogger(t)), workflow, webTool
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_AgentChat(t *testing.T) {
	srv, workflow, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/agent-chat",
		`{"email_content": "Dear team,\nhow many servers do we have?\nRegards", "reply_to": "client@example.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "client@example.com", workflow.lastReply)

	var resp models.AgentChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "There are 12 servers.", resp.Summary)
	assert.Equal(t, "run-1", resp.FullResult.RunID)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_Chat(t *testing.T) {
	srv, workflow, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/chat", `{"query": "how many servers?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "how many servers?", workflow.lastInput)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "There are 12 servers.", resp.Summary)
}

func TestServer_SearchAndSummarize(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/search-and-summarize", `{"query": "where does pizza come from?"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Pizza comes from Naples.", resp.Summary)
}

func TestServer_ErrorFlavoredSummaryStaysOK(t *testing.T) {
	srv, workflow, _ := newTestServer(t)
	workflow.state.Summary = "Exception: something went wrong internally"
	workflow.state.Route = models.RouteTerminal

	rec := doRequest(t, srv, http.MethodPost, "/chat", `{"query": "anything"}`)

	require.Equal(t, http.StatusOK, rec.Code, "workflow-internal failures must not surface as server errors")

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Summary, "Exception:"))
}

func TestServer_PayloadValidation(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{
			name: "missing required field",
			path: "/agent-chat",
			body: `{"reply_to": "client@example.com"}`,
		},
		{
			name: "wrong type",
			path: "/chat",
			body: `{"query": 42}`,
		},
		{
			name: "unknown field",
			path: "/chat",
			body: `{"query": "x", "mode": "fast"}`,
		},
		{
			name: "malformed json",
			path: "/chat",
			body: `{"query": `,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newTestServer(t)
			rec := doRequest(t, srv, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestServer_Health(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}
