package alerts

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/notifkit/notifkit/pkg/directory"
	"github.com/notifkit/notifkit/pkg/dispatch"
	"github.com/notifkit/notifkit/pkg/history"
	"github.com/notifkit/notifkit/pkg/notification"
)

// Option is a functional option for configuring the Service.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	history   history.Storage
	batchSize int
	rateLimit rate.Limit
	rateBurst int
	cacheOpts []directory.Option
	queueOpts []dispatch.Option
}

// WithLogger sets the logger. Nil values are ignored.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithHistory persists every terminal outcome to the given storage.
func WithHistory(storage history.Storage) Option {
	return func(o *options) {
		o.history = storage
	}
}

// WithBulkBatchSize sets how many users a bulk send works on concurrently.
// Values below one are ignored.
func WithBulkBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithRateLimit enables per-user rate limiting: at most perSec sustained sends
// per user with the given burst allowance. Non-positive values are ignored.
func WithRateLimit(perSec float64, burst int) Option {
	return func(o *options) {
		if perSec > 0 {
			o.rateLimit = rate.Limit(perSec)
		}
		if burst > 0 {
			o.rateBurst = burst
		}
	}
}

// WithConfig applies an environment-loaded configuration in one call.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		WithBulkBatchSize(cfg.BulkBatchSize)(o)
		WithRateLimit(cfg.RateLimit, cfg.RateBurst)(o)
	}
}

// WithCacheOptions tunes the user cache the service builds around the lookup.
// Ignored when the supplied lookup is already a cached decorator.
func WithCacheOptions(opts ...directory.Option) Option {
	return func(o *options) {
		o.cacheOpts = append(o.cacheOpts, opts...)
	}
}

// WithQueueOptions passes options through to the underlying dispatch queue,
// for tuning retries, result cache size, or instrumentation.
func WithQueueOptions(opts ...dispatch.Option) Option {
	return func(o *options) {
		o.queueOpts = append(o.queueOpts, opts...)
	}
}

// SendOption adjusts a single send request.
type SendOption func(*sendOptions)

type sendOptions struct {
	kind notification.Kind
}

// WithKind overrides the notification kind for one send. The default is
// KindAlert.
func WithKind(k notification.Kind) SendOption {
	return func(o *sendOptions) {
		o.kind = k
	}
}
