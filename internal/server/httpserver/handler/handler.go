package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/yndnr/scenelink/internal/app"
	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
)

// Roles is the running process as seen by the admin API.
type Roles interface {
	Ready() bool
	ConsumerStatus() (app.ConsumerStatus, error)
	ProducerStatus() (app.ProducerStatus, error)
}

// Handler serves the admin API.
type Handler struct {
	roles  Roles
	logger logger.Logger
	mux    *http.ServeMux
}

// New creates a Handler reporting on roles.
func New(roles Roles, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Component("admin")
	}
	h := &Handler{
		roles:  roles,
		logger: log,
		mux:    http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /v1/mirror", h.handleMirror)
	h.mux.HandleFunc("GET /v1/mirror/nodes/{id}", h.handleMirrorNode)
	h.mux.HandleFunc("GET /v1/producer", h.handleProducer)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// handleError converts coded errors to HTTP responses.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var se *scene.Error
	if errors.As(err, &se) {
		var details any
		if se.Details != "" {
			details = se.Details
		}
		h.writeError(w, r, errorCodeToHTTPStatus(se.Code), se.Code, se.Message, details)
		return
	}
	logger.L(r.Context()).Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, scene.ErrInternal.Code, scene.ErrInternal.Message, nil)
}

func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4010"):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	case strings.Contains(code, "-4"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
