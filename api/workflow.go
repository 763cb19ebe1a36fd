package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/koopa0/ragapi/internal/log"
	"github.com/koopa0/ragapi/internal/workflow"
)

// Runner is the orchestrator contract the HTTP layer consumes.
type Runner interface {
	RunStatic(ctx context.Context, messages []workflow.Message) (*workflow.Result, error)
	RunAgent(ctx context.Context, messages []workflow.Message) (*workflow.Result, error)
}

// WorkflowHandler handles the RAG flow endpoints.
//
// Endpoints:
//   - POST /rag       - static flow: always retrieve, then answer
//   - POST /rag-agent - agentic flow: the model decides when to retrieve
type WorkflowHandler struct {
	runner Runner
	logger log.Logger
}

// NewWorkflowHandler creates a new workflow handler.
func NewWorkflowHandler(runner Runner, logger log.Logger) *WorkflowHandler {
	return &WorkflowHandler{runner: runner, logger: logger}
}

// RegisterRoutes registers flow routes on the given mux.
func (h *WorkflowHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /rag", h.handleStatic)
	mux.HandleFunc("POST /rag-agent", h.handleAgent)
}

// RAGRequest is the request body shared by both flow endpoints.
type RAGRequest struct {
	Messages []workflow.Message `json:"messages"`
}

// RAGResponse wraps a flow result.
type RAGResponse struct {
	Result *workflow.Result `json:"result"`
}

func (h *WorkflowHandler) handleStatic(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.runner.RunStatic)
}

func (h *WorkflowHandler) handleAgent(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.runner.RunAgent)
}

// handle decodes the shared request shape, runs the flow, and maps flow
// errors onto HTTP statuses.
func (h *WorkflowHandler) handle(w http.ResponseWriter, r *http.Request, run func(context.Context, []workflow.Message) (*workflow.Result, error)) {
	var req RAGRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "malformed JSON body: "+err.Error())
		return
	}

	result, err := run(r.Context(), req.Messages)
	if err != nil {
		h.logger.Warn("flow failed",
			"path", r.URL.Path,
			"request_id", requestID(r.Context()),
			"error", err)
		status, code := statusForError(err)
		writeError(w, h.logger, status, code, err.Error())
		return
	}

	writeJSON(w, h.logger, http.StatusOK, RAGResponse{Result: result})
}

// statusForError maps flow sentinel errors onto HTTP statuses.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, workflow.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, workflow.ErrUnsupportedTool):
		return http.StatusBadGateway, "unsupported_tool"
	case errors.Is(err, workflow.ErrRoundLimitExceeded):
		return http.StatusBadGateway, "round_limit_exceeded"
	case errors.Is(err, workflow.ErrUpstreamService):
		return http.StatusBadGateway, "upstream_service"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
