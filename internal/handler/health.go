package handler

import (
	"net/http"

	natsclient "github.com/capitalize-ai/claude-web-client/internal/nats"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	natsClient     *natsclient.Client
	organizationID string
}

// NewHealthHandler creates a new health handler. natsClient is nil when
// exchange publishing is disabled.
func NewHealthHandler(natsClient *natsclient.Client, organizationID string) *HealthHandler {
	return &HealthHandler{
		natsClient:     natsClient,
		organizationID: organizationID,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.organizationID == "" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "session not established",
		})
		return
	}

	if h.natsClient != nil && !h.natsClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
