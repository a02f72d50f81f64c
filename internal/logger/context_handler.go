package logger

import (
	"context"
	"log/slog"

	"github.com/garyellow/agri-advisor-go/internal/ctxutil"
)

// ContextHandler is a slog.Handler decorator that copies request-scoped
// values from the context onto every record.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a new ContextHandler that wraps the provided handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds request_id, client_ip, user_id and strategy when present.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctxutil.GetRequestID(ctx); ok {
		r.AddAttrs(slog.String("request_id", id))
	}
	if ip := ctxutil.GetClientIP(ctx); ip != "" {
		r.AddAttrs(slog.String("client_ip", ip))
	}
	if uid := ctxutil.GetUserID(ctx); uid != "" {
		r.AddAttrs(slog.String("user_id", uid))
	}
	if s := ctxutil.GetStrategy(ctx); s != "" {
		r.AddAttrs(slog.String("strategy", s))
	}
	return h.handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}
