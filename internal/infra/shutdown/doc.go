// Package shutdown coordinates process termination for scenelink-server.
//
// A Handler waits for SIGINT/SIGTERM (or a cancelled context), then runs
// the registered hooks in reverse order under a deadline. The role
// runners register their stop functions so the admin server closes
// after the tick drivers and the capture file flushes last.
package shutdown
