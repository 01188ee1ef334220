// Package logging is how gistpen reports what the entity manager did behind a
// call: children skipped during a cascade, legacy commit metadata upgraded,
// storage failures that were tolerated. New builds the log/slog backed
// implementation from the configured level and format.
package logging

import "context"

// Logger takes a message and alternating key and value arguments:
//
//	log.Warn(ctx, "cascade child failed", "kind", "blob", "id", id, "error", err)
//
// The context is handed to the handler so request scoped values reach it.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn is for failures the manager recovers from.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a Logger that adds args to every record, e.g. the
	// component name set in main.
	With(args ...any) Logger
}
