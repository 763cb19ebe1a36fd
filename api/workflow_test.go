package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koopa0/ragapi/internal/log"
	"github.com/koopa0/ragapi/internal/workflow"
)

// mockRunner implements Runner with fixed results per flow.
type mockRunner struct {
	staticResult *workflow.Result
	staticErr    error
	agentResult  *workflow.Result
	agentErr     error

	staticCalls int
	agentCalls  int
	lastInput   []workflow.Message
}

func (m *mockRunner) RunStatic(ctx context.Context, messages []workflow.Message) (*workflow.Result, error) {
	m.staticCalls++
	m.lastInput = messages
	return m.staticResult, m.staticErr
}

func (m *mockRunner) RunAgent(ctx context.Context, messages []workflow.Message) (*workflow.Result, error) {
	m.agentCalls++
	m.lastInput = messages
	return m.agentResult, m.agentErr
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestWorkflowHandler_Static(t *testing.T) {
	runner := &mockRunner{staticResult: &workflow.Result{
		Content:     "Use filter OF-123 [manual.pdf].",
		Diagnostics: []workflow.Step{},
	}}
	handler := NewServer(runner, nil, log.NewNop()).Handler()

	w := postJSON(t, handler, "/rag",
		`{"messages":[{"role":"user","content":"Which oil filter?"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, runner.staticCalls)
	assert.Zero(t, runner.agentCalls)

	var resp RAGResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	assert.Contains(t, resp.Result.Content, "OF-123")
	assert.NotNil(t, resp.Result.Diagnostics)

	require.Len(t, runner.lastInput, 1)
	assert.Equal(t, "user", runner.lastInput[0].Role)
}

func TestWorkflowHandler_Agent(t *testing.T) {
	runner := &mockRunner{agentResult: &workflow.Result{
		Content: "OF-123 [manual.pdf].",
		Diagnostics: []workflow.Step{
			{Name: "get_sources", Content: "<source>...</source>"},
		},
	}}
	handler := NewServer(runner, nil, log.NewNop()).Handler()

	w := postJSON(t, handler, "/rag-agent",
		`{"messages":[{"role":"user","content":"Which oil filter?"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, runner.agentCalls)
	assert.Zero(t, runner.staticCalls)

	var resp RAGResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Result.Diagnostics, 1)
	assert.Equal(t, "get_sources", resp.Result.Diagnostics[0].Name)
}

func TestWorkflowHandler_MalformedBody(t *testing.T) {
	runner := &mockRunner{}
	handler := NewServer(runner, nil, log.NewNop()).Handler()

	w := postJSON(t, handler, "/rag", `{"messages": [`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, runner.staticCalls, "flow must not run for malformed input")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestWorkflowHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid request", workflow.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
		{"wrapped invalid request", fmt.Errorf("%w: empty", workflow.ErrInvalidRequest), http.StatusBadRequest, "invalid_request"},
		{"upstream failure", workflow.ErrUpstreamService, http.StatusBadGateway, "upstream_service"},
		{"unsupported tool", workflow.ErrUnsupportedTool, http.StatusBadGateway, "unsupported_tool"},
		{"round limit", workflow.ErrRoundLimitExceeded, http.StatusBadGateway, "round_limit_exceeded"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{staticErr: tt.err}
			handler := NewServer(runner, nil, log.NewNop()).Handler()

			w := postJSON(t, handler, "/rag", `{"messages":[{"role":"user","content":"q"}]}`)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

func TestWorkflowHandler_MethodNotAllowed(t *testing.T) {
	handler := NewServer(&mockRunner{}, nil, log.NewNop()).Handler()

	req := httptest.NewRequest(http.MethodGet, "/rag", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
