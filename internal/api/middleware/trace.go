package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api/shared"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/platform/logger"
)

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// TraceMiddleware adds a trace ID to the request context and logs the
// request outcome. The trace-tagged logger is installed in the context so
// downstream code reached via logger.FromContext carries the same ID. Apply
// it early in the chain so every subsequent handler sees both.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		log := slog.With(
			slog.String("trace_id", shared.GetTraceID(ctx)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))
		ctx = logger.WithLogger(ctx, log)

		log.Debug("request started", slog.String("remote_addr", r.RemoteAddr))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		log.Debug("request completed",
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)))
	})
}
