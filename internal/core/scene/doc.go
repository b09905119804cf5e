// Package scene defines the data model shared by the producer and consumer
// roles: node snapshots, render components, heavy assets and transform
// deltas.
//
// Values in this package are plain data. They carry no engine handles and are
// safe to copy between goroutines once built.
package scene
