// Package tlsroots builds the TLS configurations of the HTTPS admin server
// and of the CLI that queries it.
//
// Pool collects trusted roots (system roots plus CA files). Watcher holds a
// key pair and reloads it when the files change, so certificates can be
// rotated without a restart. NewServerConfig and NewClientConfig combine the
// two from file paths.
package tlsroots
