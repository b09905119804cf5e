// Package confloader loads configuration from multiple sources.
//
// It wraps koanf and merges sources in priority order, later sources
// overriding earlier ones:
//
//  1. Values already set on the target struct (defaults)
//  2. Configuration file (YAML)
//  3. Environment variables (SCENELINK_SECTION_KEY)
//  4. Maps loaded explicitly, such as command-line flags
//
// Watcher reports changes to individual files, watching their parent
// directory so editors that save by rename are handled.
package confloader
