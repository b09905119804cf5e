package logger

import "context"

type contextKey string

const (
	loggerKey    contextKey = "scenelink.logger"
	requestIDKey contextKey = "scenelink.request_id"
	peerKey      contextKey = "scenelink.peer"
	roleKey      contextKey = "scenelink.role"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context, or the default logger.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID adds an admin API request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithPeer adds a transport routing identity to the context.
func WithPeer(ctx context.Context, peer string) context.Context {
	return context.WithValue(ctx, peerKey, peer)
}

// PeerFromContext extracts the routing identity from context.
func PeerFromContext(ctx context.Context) string {
	p, _ := ctx.Value(peerKey).(string)
	return p
}

// WithRole adds the running role (producer, consumer) to the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

// RoleFromContext extracts the role from context.
func RoleFromContext(ctx context.Context) string {
	r, _ := ctx.Value(roleKey).(string)
	return r
}

// L returns the context logger bound to ctx, so entries carry the role,
// peer and request ID found there.
func L(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
