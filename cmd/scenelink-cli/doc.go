// Package main provides the entry point for scenelink-cli.
//
// scenelink-cli queries a running scenelink-server through its admin API
// and inspects capture files offline.
//
// Usage:
//
//	scenelink-cli probe --wait
//	scenelink-cli mirror nodes -o json
//	scenelink-cli inspect --frame 3 session.cap
//	scenelink-cli config server validate scenelink.yaml
package main
