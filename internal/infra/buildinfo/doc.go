// Package buildinfo exposes build information for the scenelink binaries.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/scenelink/internal/infra/buildinfo.Version=v1.0.0"
//
// GoVersion is read from the binary itself.
package buildinfo
