// Package engine declares the collaborators that own the real scene graph.
//
// The producer role reads a SourceScene and asks a Readback for image bytes
// that are not CPU-readable. The consumer role builds its mirror through a
// Host and learns about interactive edits from an EditSource. Package memory
// provides in-process implementations of all of them.
package engine
