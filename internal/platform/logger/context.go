package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithLogger returns a context carrying the given logger. Handlers attach a
// request-scoped logger (trace ID, method, path) so lower layers can log with
// the same correlation attributes.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// FromContext returns the logger stored in the context, or the slog default
// when none is present.
func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return log
	}
	return slog.Default()
}

// FromContextOrDefault returns the context logger when present, otherwise the
// provided fallback. Used by stores that carry a component-tagged logger.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if log, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return log
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
