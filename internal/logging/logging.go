// Package logging carries a request-scoped slog.Logger through contexts so
// that services and repositories annotate the logger chosen by the HTTP
// layer instead of the process-wide default.
package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// ContextWithLogger returns a derived context that carries the provided logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts a logger previously attached to the context.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(contextKey{}).(*slog.Logger)
	return logger
}

// Default returns the context logger when present, falling back to the
// supplied base logger and finally to slog.Default.
func Default(ctx context.Context, base *slog.Logger) *slog.Logger {
	if logger := FromContext(ctx); logger != nil {
		return logger
	}
	if base != nil {
		return base
	}
	return slog.Default()
}
