package logger

import (
	"context"
	"log/slog"

	"github.com/shriyansnaik/multimodal-rag/internal/middleware"
)

// ContextHandler decorates a slog.Handler with the request correlation id
// carried in the context, so every log line within a request is traceable.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(middleware.CorrelationKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}
