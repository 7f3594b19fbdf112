package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"smartfetch/infrastructure/health"
)

// HealthHandler serves the immutable startup health snapshot
type HealthHandler struct {
	snapshot health.Snapshot
	logger   *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(snapshot health.Snapshot, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		snapshot: snapshot,
		logger:   logger,
	}
}

// Health handles GET /health. The snapshot is written verbatim, without the
// response envelope, so probes and dashboards read the runtime state
// directly.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.snapshot.HTTPStatus())
	if err := json.NewEncoder(w).Encode(h.snapshot); err != nil {
		h.logger.Error("encoding health snapshot", zap.Error(err))
	}
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
