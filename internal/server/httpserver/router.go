package httpserver

import (
	"net/http"

	"github.com/yndnr/scenelink/internal/server/httpserver/handler"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
)

// RouterConfig holds configuration for the admin router.
type RouterConfig struct {
	Roles handler.Roles

	// Metrics serves /metrics; nil disables the route.
	Metrics http.Handler

	Logger logger.Logger

	// Token, when set, is required on /v1 routes and /metrics.
	Token string

	// RateLimit is requests per second per client IP; 0 disables.
	RateLimit float64
	RateBurst int
}

// NewRouter creates the admin router with all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Component("admin")
	}
	h := handler.New(cfg.Roles, log)

	// Order: Recover -> RequestID -> AccessLog -> RateLimit -> [Auth] -> Handler
	base := []Middleware{Recover(log), RequestID(), AccessLog(log)}
	if cfg.RateLimit > 0 {
		base = append(base, RateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	open := Chain(h, base...)
	protected := func(next http.Handler) http.Handler {
		return Chain(BearerAuth(cfg.Token)(next), base...)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", open)
	mux.Handle("GET /ready", open)
	mux.Handle("GET /v1/", protected(h))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", protected(cfg.Metrics))
	}
	return mux
}
