// Package metric provides Prometheus metrics for SceneLink.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: the Registry of named metrics and its HTTP handler
//   - collector.go: a Collector for values sampled at scrape time
//
// Metrics include:
//
//   - Tick duration histograms per role
//   - Skipped producer ticks and encoded message sizes
//   - Frames sent, received and dropped by the transport
//   - Mirrored node and unresolved reference gauges
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
