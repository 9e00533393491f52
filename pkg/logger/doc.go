// Package logger provides a context-aware wrapper around Go's slog package
// with functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// A single factory, New, creates a *slog.Logger configured by Option
// functions: output format (text or json), minimum level, static attributes
// applied to every record, and ContextExtractor callbacks that pull dynamic
// attributes (such as a request id) from the logging context on every record.
//
// Helper constructors in attr.go (Error, NotificationID, UserID, Kind,
// Channel, Component) keep attribute naming consistent across the codebase.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithProduction("alerts"),
//	    logger.WithAttr(slog.String("version", version)),
//	)
//	log.Info("notification delivered", logger.NotificationID(id))
//
// Every component in this module accepts a *slog.Logger through its options
// and falls back to slog.Default() when none is given, so hosts that already
// configure slog elsewhere can skip this package entirely.
package logger
