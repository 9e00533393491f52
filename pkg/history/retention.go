package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/notifkit/notifkit/pkg/logger"
)

// purgeTimeout bounds a single scheduled sweep.
const purgeTimeout = 2 * time.Minute

// Retention purges old history records on a cron schedule. It works against
// any Storage, so the same sweeper serves the in-memory, Redis, Mongo, and
// Postgres backends.
type Retention struct {
	storage Storage
	maxAge  time.Duration
	cron    *cron.Cron
	logger  *slog.Logger
}

// RetentionOption configures a Retention sweeper.
type RetentionOption func(*Retention)

// WithRetentionLogger sets the logger for sweep outcomes. Nil values are
// ignored.
func WithRetentionLogger(log *slog.Logger) RetentionOption {
	return func(r *Retention) {
		if log != nil {
			r.logger = log
		}
	}
}

// NewRetention schedules a purge of records older than cfg.MaxAge on the
// cfg.Schedule cron expression. Nothing runs until Start is called.
func NewRetention(storage Storage, cfg RetentionConfig, opts ...RetentionOption) (*Retention, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}
	if cfg.MaxAge <= 0 {
		return nil, fmt.Errorf("%w: retention max age must be positive", ErrInvalidConfig)
	}

	r := &Retention{
		storage: storage,
		maxAge:  cfg.MaxAge,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	r.cron = cron.New(cron.WithParser(parser))
	if _, err := r.cron.AddFunc(cfg.Schedule, r.sweep); err != nil {
		return nil, fmt.Errorf("%w: bad retention schedule %q: %v", ErrInvalidConfig, cfg.Schedule, err)
	}
	return r, nil
}

// Start begins running scheduled sweeps in a background goroutine.
func (r *Retention) Start() {
	r.cron.Start()
}

// Stop halts scheduling. The returned context is done once any in-flight
// sweep has finished.
func (r *Retention) Stop() context.Context {
	return r.cron.Stop()
}

// RunOnce purges immediately, outside the schedule, and reports how many
// records were removed.
func (r *Retention) RunOnce(ctx context.Context) (int, error) {
	return r.storage.PurgeOlderThan(ctx, time.Now().Add(-r.maxAge))
}

func (r *Retention) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	start := time.Now()
	purged, err := r.RunOnce(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "history retention sweep failed", logger.Error(err))
		return
	}
	r.logger.InfoContext(ctx, "history retention sweep completed",
		slog.Int("purged", purged),
		slog.Duration("elapsed", time.Since(start)),
	)
}
