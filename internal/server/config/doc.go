// Package config provides the SceneLink configuration.
//
//   - spec.go: ScenelinkConfig struct definition and role flags
//   - default.go: Default configuration values
//   - verify.go: Validation (endpoint syntax, ranges, role selection)
//   - sanitize.go: Log sanitization (hide the admin token)
//
// Configuration is loaded via internal/infra/confloader and supports
// files, environment variables and flags.
package config
