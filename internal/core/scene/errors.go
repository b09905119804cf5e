package scene

import (
	"errors"
	"fmt"
)

// Error is a coded error surfaced to operators through logs, the admin API
// and the CLI. Codes follow the SL-<AREA>-<NNNN> layout.
type Error struct {
	Code    string
	Message string
	Details string
	Cause   error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Code so that a detailed copy still satisfies errors.Is
// against the package-level value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a coded error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetails returns a copy carrying details.
func (e *Error) WithDetails(details string) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, Cause: e.Cause}
}

// WithCause returns a copy wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, Cause: cause}
}

// ErrorCode extracts the code from err, or "" if err carries none.
func ErrorCode(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// Wire errors (WIRE).
var (
	ErrMalformedFrame   = NewError("SL-WIRE-4000", "malformed frame")
	ErrUnknownComponent = NewError("SL-WIRE-4001", "unknown component discriminator")
	ErrUnknownFrameKind = NewError("SL-WIRE-4002", "unknown frame kind")
)

// Session errors (SESS).
var (
	ErrHandshakeRejected = NewError("SL-SESS-4010", "handshake rejected")
	ErrHandshakeTimeout  = NewError("SL-SESS-4080", "handshake timed out")
	ErrPeerClosed        = NewError("SL-SESS-4990", "peer closed session")
	ErrPeerUnknown       = NewError("SL-SESS-4040", "peer identity unknown")
)

// Role errors (ROLE).
var (
	ErrRoleDisabled = NewError("SL-ROLE-4040", "role not enabled")
)

// Mirror errors (MIR).
var (
	ErrNodeNotFound = NewError("SL-MIR-4040", "node not found")
)

// Capture errors (CAP).
var (
	ErrCaptureCorrupt = NewError("SL-CAP-4000", "capture record corrupt")
)

// System errors (SYS).
var (
	ErrInternal     = NewError("SL-SYS-5000", "internal error")
	ErrBadRequest   = NewError("SL-SYS-4000", "bad request")
	ErrUnauthorized = NewError("SL-SYS-4010", "unauthorized")
	ErrRateLimited  = NewError("SL-SYS-4290", "too many requests")
	ErrNotReady     = NewError("SL-SYS-5030", "not ready")
)
