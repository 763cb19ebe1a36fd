package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koopa0/ragapi/internal/log"
)

// StatusHandler handles the status and probe endpoints.
type StatusHandler struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// NewStatusHandler creates a new status handler.
// pool is the database connection pool used for readiness checks.
func NewStatusHandler(pool *pgxpool.Pool, logger log.Logger) *StatusHandler {
	return &StatusHandler{pool: pool, logger: logger}
}

// RegisterRoutes registers status routes on the given mux.
func (h *StatusHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /status", h.acknowledge)
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

// StatusResponse is the fixed acknowledgement returned by GET /status.
type StatusResponse struct {
	Status string `json:"status"`
}

// acknowledge returns a fixed acknowledgement with no core logic behind it.
func (h *StatusHandler) acknowledge(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, StatusResponse{Status: "ok"})
}

// liveness is a liveness probe endpoint.
// Returns 200 OK if the process is alive.
func (h *StatusHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness is a readiness probe endpoint.
// Returns 200 OK if all dependencies are ready.
// Performs actual health check by pinging the database.
func (h *StatusHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		http.Error(w, "database pool not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.pool.Ping(r.Context()); err != nil {
		h.logger.Error("readiness check failed", "error", err)
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
