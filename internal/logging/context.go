package logging

import (
	"context"
	"io"
	"log/slog"
)

type contextKey struct{}

var loggerKey contextKey

// WithLogger returns a context carrying the request-scoped logger. The
// request middleware attaches one per request so handlers and services
// log with the request ID attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, orDiscard(logger))
}

// FromContext returns the context logger, the fallback, or a discard
// logger, in that order. Never returns nil.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return orDiscard(fallback)
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
