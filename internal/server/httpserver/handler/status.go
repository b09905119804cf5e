package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/yndnr/scenelink/internal/core/scene"
)

// handleMirror handles GET /v1/mirror. With ?nodes=false the node list is
// omitted.
func (h *Handler) handleMirror(w http.ResponseWriter, r *http.Request) {
	st, err := h.roles.ConsumerStatus()
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if v := r.URL.Query().Get("nodes"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			h.handleError(w, r, scene.ErrBadRequest.WithDetails("nodes must be a boolean"))
			return
		}
		if !include {
			st.Nodes = nil
		}
	}
	h.writeJSON(w, r, http.StatusOK, st)
}

// handleMirrorNode handles GET /v1/mirror/nodes/{id}.
func (h *Handler) handleMirrorNode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 32)
	if err != nil {
		h.handleError(w, r, scene.ErrBadRequest.WithDetails("node id must be an int32"))
		return
	}
	st, err := h.roles.ConsumerStatus()
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	for _, n := range st.Nodes {
		if n.ID == int32(id) {
			h.writeJSON(w, r, http.StatusOK, n)
			return
		}
	}
	h.handleError(w, r, scene.ErrNodeNotFound.WithDetails(fmt.Sprintf("id %d", id)))
}

// handleProducer handles GET /v1/producer.
func (h *Handler) handleProducer(w http.ResponseWriter, r *http.Request) {
	st, err := h.roles.ProducerStatus()
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, st)
}
