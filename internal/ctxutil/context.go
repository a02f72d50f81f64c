// Package ctxutil provides type-safe context values for request tracing.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	requestIDKey contextKey = "ctxutil.requestID"
	clientIPKey  contextKey = "ctxutil.clientIP"
	userIDKey    contextKey = "ctxutil.userID"
	strategyKey  contextKey = "ctxutil.strategy"
)

func withString(ctx context.Context, key contextKey, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func getString(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// WithRequestID adds a request ID to the context for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request ID and whether one was set.
func GetRequestID(ctx context.Context) (string, bool) {
	id := getString(ctx, requestIDKey)
	return id, id != ""
}

// WithClientIP records the HTTP caller's address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return withString(ctx, clientIPKey, ip)
}

// GetClientIP returns the caller address or "".
func GetClientIP(ctx context.Context) string {
	return getString(ctx, clientIPKey)
}

// WithUserID records a chat platform user ID (LINE front-end only).
func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, userIDKey, userID)
}

// GetUserID returns the chat user ID or "".
func GetUserID(ctx context.Context) string {
	return getString(ctx, userIDKey)
}

// WithStrategy records the active classification strategy name.
func WithStrategy(ctx context.Context, name string) context.Context {
	return withString(ctx, strategyKey, name)
}

// GetStrategy returns the classification strategy name or "".
func GetStrategy(ctx context.Context) string {
	return getString(ctx, strategyKey)
}
