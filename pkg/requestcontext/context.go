// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Values are set by middleware and consumed by
// services; keeping this package free of net/http lets services import only
// what they need.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// RequestID retrieves the correlation ID from the context, or "" if unset.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now returns the request-pinned time if one was injected, else time.Now().
// Tests inject a fixed time via WithTime to make timestamps deterministic.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return v
	}
	return time.Now()
}

// WithTime pins the request time in the context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
