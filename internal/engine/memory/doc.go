// Package memory implements the engine collaborators in process.
//
// Scene is a source scene described by a YAML file, Readback simulates a
// delayed GPU read, Host keeps mirrored objects in plain structs and
// EditQueue collects interactive transform edits. The daemon uses them to run
// both roles without a real engine, and tests use them as fakes.
package memory
