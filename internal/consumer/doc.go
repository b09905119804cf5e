// Package consumer keeps a local mirror of a remote scene.
//
// The Reconciler applies each snapshot Message to objects created through an
// engine.Host: it creates, updates, re-parents and destroys mirrored nodes so
// the mirror matches the newest snapshot. References that cannot be resolved
// yet (meshes, images, parents, root bones) are left pending and retried on
// the next Message.
//
// Feedback turns local edits of mirrored nodes into transform deltas for the
// producer and claims those nodes in the per-tick Authority set, so the
// Reconciler does not overwrite them with stale snapshot transforms.
//
// Mirror ties both to the inbound and outbound queues and is driven once per
// tick from a single goroutine. Only Status and Summary may be called
// concurrently.
package consumer
