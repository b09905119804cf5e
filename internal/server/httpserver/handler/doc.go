// Package handler provides the admin API handlers for scenelink-server.
//
// Every JSON response uses the Response envelope. Errors carry the
// SL-<AREA>-<NNNN> code of the underlying scene.Error, both in the body
// and in the X-Error-Code header.
package handler
