// Package config holds scenelink-cli's own settings (~/.scenelink/cli.yaml):
// which admin endpoint to talk to, the bearer token and the default output
// format. Environment variables and flags override the file.
package config
