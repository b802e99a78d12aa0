package core

import "context"

// contextKey is an unexported type used for context keys in this package to
// prevent collisions with keys defined in other packages.
type contextKey int

const (
	sessionIDKey contextKey = iota
	requestIDKey
)

// WithSessionID returns a copy of ctx carrying id as the session ID: the
// identifier a Client attaches to every Perform call it makes for its
// lifetime, so log lines from a single long-running process can be grouped
// together regardless of which use case or provider handled each call.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// GetSessionID extracts the session ID attached by WithSessionID. It returns
// an empty string if none was ever attached, which pre/post/notify handlers
// should treat the same as "no session to correlate against" rather than a
// malformed ID.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// WithRequestID returns a copy of ctx carrying id as the request ID: the
// identifier for one Perform call, generated fresh unless the caller supplied
// one via PerformRequest.RequestID to propagate an inbound ID from its own
// caller.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID extracts the request ID attached by WithRequestID. It returns
// an empty string if none was ever attached.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
