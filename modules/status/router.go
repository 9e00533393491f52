package status

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/notifkit/notifkit/pkg/alerts"
	"github.com/notifkit/notifkit/pkg/history"
)

type options struct {
	history history.Storage
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the status router.
type Option func(*options)

// WithHistory overrides the history storage the read endpoints query. By
// default the router uses the service's own storage.
func WithHistory(store history.Storage) Option {
	return func(o *options) {
		if store != nil {
			o.history = store
		}
	}
}

// WithLogger sets the logger for handler errors. Nil values are ignored.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithMetricsHandler mounts h at GET /metrics, typically metrics.Handler().
func WithMetricsHandler(h http.Handler) Option {
	return func(o *options) {
		if h != nil {
			o.metrics = h
		}
	}
}

// Router builds the read-only status surface for an alerts service. Mount it
// wherever the host exposes operational endpoints:
//
//	r := chi.NewRouter()
//	r.Mount("/notifications", status.Router(svc))
//
// The service must be non-nil.
func Router(svc *alerts.Service, opts ...Option) chi.Router {
	if svc == nil {
		panic("status: nil alerts service")
	}

	cfg := options{
		history: svc.History(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &handlers{
		svc:     svc,
		history: cfg.history,
		logger:  cfg.logger,
	}

	r := chi.NewRouter()
	r.Get("/queue", h.queue)
	r.Get("/results/{id}", h.result)
	r.Get("/users/{userID}/history", h.listHistory)
	r.Get("/users/{userID}/history/unread-count", h.unreadCount)
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}
	return r
}
