// Package metrics exposes dispatch instrumentation as Prometheus metrics.
//
// DispatchRecorder implements dispatch.Recorder, so plugging it into a queue
// is one option:
//
//	rec := metrics.NewDispatchRecorder(nil)
//	q, err := dispatch.New(deliver, dispatch.WithRecorder(rec))
//	if err != nil {
//		return err
//	}
//
//	http.Handle("/metrics", metrics.Handler())
//
// Metric names are prefixed notifkit_dispatch_. Counters cover accepted,
// duplicate, delivered, retried, and failed totals; a gauge tracks queue
// depth; a histogram tracks per-attempt delivery duration labeled by outcome.
package metrics
