package handlers

import (
	"net/http"

	"github.com/ritualgrammar/navigator/internal/engine"
	"github.com/ritualgrammar/navigator/internal/storage"
)

// Version is reported by the health endpoint.
var Version = "dev"

// HealthHandler reports liveness and store load state.
type HealthHandler struct {
	status StatusReporter
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(status StatusReporter) *HealthHandler {
	return &HealthHandler{status: status}
}

// GetHealth handles GET /api/health. The server is healthy while it is up;
// a failed store shows as "degraded" without changing the status code.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}

	stores := map[storage.Kind]engine.StatusEvent{}
	if h.status != nil {
		stores = h.status.Status()
	}

	status := "healthy"
	for _, ev := range stores {
		if ev.Status == engine.StatusFailed {
			status = "degraded"
		}
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:  status,
		Version: Version,
		Stores:  stores,
	})
}
