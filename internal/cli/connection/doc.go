// Package connection talks to the scenelink-server admin API.
//
// The admin API is read-only: every call is a GET returning the standard
// JSON envelope. Client unwraps the envelope's data field and turns error
// envelopes into *APIError.
package connection
