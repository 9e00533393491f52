package dispatch

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring a queue
type Option func(*options)

type options struct {
	maxRetries      int
	resultCacheSize int
	resultTTL       time.Duration
	sweepInterval   time.Duration
	logger          *slog.Logger
	recorder        Recorder
}

// WithMaxRetries sets how many times a failed delivery is retried before the
// identity is recorded as a terminal failure. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithResultCacheSize caps how many terminal results are retained.
func WithResultCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.resultCacheSize = n
		}
	}
}

// WithResultTTL sets how long a terminal result stays readable. The expiry
// sweep runs at a quarter of the TTL unless overridden by WithSweepInterval.
func WithResultTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.resultTTL = d
		}
	}
}

// WithSweepInterval overrides the period of the background expiry sweep.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.sweepInterval = d
		}
	}
}

// WithConfig applies an environment-loaded configuration in one call.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		WithMaxRetries(cfg.MaxRetries)(o)
		WithResultCacheSize(cfg.ResultCacheSize)(o)
		WithResultTTL(cfg.ResultTTL)(o)
		WithSweepInterval(cfg.SweepInterval)(o)
	}
}

// WithLogger sets the logger for the queue
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecorder sets the instrumentation sink for queue events.
func WithRecorder(rec Recorder) Option {
	return func(o *options) {
		if rec != nil {
			o.recorder = rec
		}
	}
}
