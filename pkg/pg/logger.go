package pg

import "context"

// logger is the minimal logging surface this package needs for migration
// output. Any structured logger with context-aware methods satisfies it,
// *slog.Logger included.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
