// Package main provides the entry point for scenelink-server.
//
// scenelink-server runs the consumer role (bind an endpoint and mirror the
// remote scene), the producer role (publish a local scene file) or both in
// one process, selected by mode. An optional admin HTTP server exposes
// health, readiness, role status and Prometheus metrics.
//
// Usage:
//
//	scenelink-server -config scenelink.yaml
//	scenelink-server -mode server -endpoint tcp://0.0.0.0:5556
//	scenelink-server -mode client -scene scene.yaml
package main
