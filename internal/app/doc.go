// Package app wires the SceneLink roles into a running process.
//
// A ConsumerRole binds the endpoint and mirrors the remote scene into an
// in-memory host; a ProducerRole connects to it and publishes a scene
// loaded from a YAML description. Each role owns one tick driver
// goroutine; only queues cross between the tick drivers and the
// transport workers. App runs the configured roles under one errgroup.
package app
