package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/notifkit/notifkit/pkg/dispatch"
)

// Buckets for delivery duration, 1ms to 30s.
var durationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// DispatchRecorder implements dispatch.Recorder on Prometheus metrics. All
// methods are cheap counter or gauge updates, safe for the queue's hot path.
type DispatchRecorder struct {
	accepted   prometheus.Counter
	duplicates prometheus.Counter
	delivered  prometheus.Counter
	retried    prometheus.Counter
	failed     prometheus.Counter
	queueDepth prometheus.Gauge
	duration   *prometheus.HistogramVec
	evictions  *prometheus.CounterVec
}

var _ dispatch.Recorder = (*DispatchRecorder)(nil)

// NewDispatchRecorder registers the dispatch queue metrics on reg and returns
// the recorder. A nil reg falls back to the default registerer. Register once
// per registry; a second registration of the same metrics panics.
func NewDispatchRecorder(reg prometheus.Registerer) *DispatchRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &DispatchRecorder{
		accepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "notifkit_dispatch_accepted_total",
			Help: "Total number of notifications admitted to the dispatch queue.",
		}),
		duplicates: factory.NewCounter(prometheus.CounterOpts{
			Name: "notifkit_dispatch_duplicates_dropped_total",
			Help: "Total number of submissions dropped because the identity was already pending or resolved.",
		}),
		delivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "notifkit_dispatch_delivered_total",
			Help: "Total number of notifications delivered successfully.",
		}),
		retried: factory.NewCounter(prometheus.CounterOpts{
			Name: "notifkit_dispatch_retried_total",
			Help: "Total number of delivery retries after transient failures.",
		}),
		failed: factory.NewCounter(prometheus.CounterOpts{
			Name: "notifkit_dispatch_failed_total",
			Help: "Total number of notifications that failed after exhausting retries.",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "notifkit_dispatch_queue_depth",
			Help: "Current number of notifications waiting in the dispatch queue.",
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notifkit_dispatch_delivery_duration_seconds",
			Help:    "Histogram of delivery attempt durations in seconds, by outcome.",
			Buckets: durationBuckets,
		}, []string{"success"}),
		evictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifkit_dispatch_result_evictions_total",
			Help: "Total number of cached dispatch results evicted, by reason.",
		}, []string{"reason"}),
	}
}

func (r *DispatchRecorder) Accepted()         { r.accepted.Inc() }
func (r *DispatchRecorder) DuplicateDropped() { r.duplicates.Inc() }
func (r *DispatchRecorder) Delivered()        { r.delivered.Inc() }
func (r *DispatchRecorder) Retried()          { r.retried.Inc() }
func (r *DispatchRecorder) Failed()           { r.failed.Inc() }
func (r *DispatchRecorder) QueueDepth(n int)  { r.queueDepth.Set(float64(n)) }

func (r *DispatchRecorder) ObserveDelivery(d time.Duration, success bool) {
	r.duration.WithLabelValues(strconv.FormatBool(success)).Observe(d.Seconds())
}

func (r *DispatchRecorder) ResultEvicted(reason string) {
	r.evictions.WithLabelValues(reason).Inc()
}

// Handler returns the HTTP handler serving the default registry, for mounting
// at /metrics. Recorders registered on a custom registry need
// promhttp.HandlerFor instead.
func Handler() http.Handler {
	return promhttp.Handler()
}
