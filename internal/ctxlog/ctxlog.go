// Package ctxlog provides a context key for passing a *slog.Logger
// through context.Context, grounded on the same pattern in
// specialistvlad-burstgridgo's internal/ctxlog. That package's
// FromContext panics when no logger is embedded; this one instead
// falls back to slog.Default(), since reactorgraph is a library
// invoked from arbitrary caller contexts (including none at all, via
// a nil ctx) rather than a single CLI app that fully controls its own
// context tree.
package ctxlog

import (
	"context"
	"log/slog"
)

type key struct{}

var loggerKey = key{}

// WithLogger returns a new context with logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the *slog.Logger embedded in ctx. If ctx is
// nil or carries no logger, it returns slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
