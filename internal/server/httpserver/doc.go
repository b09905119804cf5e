// Package httpserver provides the admin HTTP server for scenelink-server.
//
// Routes:
//
//   - Health endpoints: /health, /ready (no authentication)
//   - Metrics: /metrics (Prometheus text format)
//   - Status endpoints: /v1/mirror, /v1/mirror/nodes/{id}, /v1/producer
//
// Middleware chain: Recover, RequestID, AccessLog, RateLimit and, when a
// token is configured, BearerAuth on /v1 and /metrics.
package httpserver
