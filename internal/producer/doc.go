// Package producer samples a live scene once per tick and turns it into
// snapshot frames for the outbound queue.
//
// The Sampler walks the source scene, emits every visible node with its
// render capabilities and attaches mesh and image assets the first time they
// are referenced. Non-readable images are fetched through an asynchronous
// readback and flushed into a later tick. Feedback applies transform deltas
// sent back by the consumer directly to the source scene.
//
// Everything in this package is driven from the producer tick goroutine;
// only Status is safe to call from elsewhere.
package producer
