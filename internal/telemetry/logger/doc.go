// Package logger provides structured logging for SceneLink.
//
// It wraps the standard library log/slog:
//
//   - logger.go: Logger interface, configuration and the global default
//   - context.go: context propagation of the logger, peer identity and role
//   - summarize.go: compaction of binary payloads and oversized strings
//
// Frames and pixel buffers are never written to the log verbatim; byte
// slices are reduced to their length and a short hex prefix.
package logger
