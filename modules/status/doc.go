// Package status exposes a read-only HTTP surface over an alerts service:
// queue depth, dispatch results, and per-user history lookups.
//
// Routes:
//
//	GET /queue                                  current queue status
//	GET /results/{id}                           terminal result for a notification
//	GET /users/{userID}/history                 delivery history, newest first
//	GET /users/{userID}/history/unread-count    unread record count
//	GET /metrics                                only with WithMetricsHandler
//
// History listings accept limit, offset, unread, kind (repeatable), and since
// (RFC3339) query parameters. All responses are JSON.
//
// The router mounts anywhere chi handlers do:
//
//	r := chi.NewRouter()
//	r.Mount("/notifications", status.Router(svc,
//		status.WithMetricsHandler(metrics.Handler()),
//	))
package status
