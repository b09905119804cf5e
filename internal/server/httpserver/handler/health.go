package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/infra/buildinfo"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
		Build:  buildinfo.Get(),
	})
}

// handleReady handles GET /ready. It is 503 until the roles are running.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.roles.Ready() {
		h.handleError(w, r, scene.ErrNotReady)
		return
	}
	_, cerr := h.roles.ConsumerStatus()
	_, perr := h.roles.ProducerStatus()
	h.writeJSON(w, r, http.StatusOK, ReadyResponse{
		Status:   "ready",
		Consumer: cerr == nil,
		Producer: perr == nil,
	})
}
