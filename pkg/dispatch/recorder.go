package dispatch

import "time"

// Recorder receives queue events for instrumentation. Implementations must be
// safe for concurrent use and must not block; the queue calls them on its hot
// path. The prometheus implementation lives in pkg/metrics.
type Recorder interface {
	// Accepted is called when a submission is admitted to the pending list.
	Accepted()
	// DuplicateDropped is called when a submission or a queued copy is
	// discarded because its identity is already owned or resolved.
	DuplicateDropped()
	// Delivered is called on terminal success.
	Delivered()
	// Retried is called each time a failed item is re-enqueued.
	Retried()
	// Failed is called on terminal failure after the retry budget is spent.
	Failed()
	// QueueDepth reports the pending list length after a change.
	QueueDepth(n int)
	// ObserveDelivery reports one delivery attempt's duration and outcome.
	ObserveDelivery(d time.Duration, success bool)
	// ResultEvicted is called when a terminal result leaves the cache;
	// reason is one of "size", "ttl", "clear".
	ResultEvicted(reason string)
}

// NopRecorder discards all events. It is the default when no recorder is set.
type NopRecorder struct{}

func (NopRecorder) Accepted()                           {}
func (NopRecorder) DuplicateDropped()                   {}
func (NopRecorder) Delivered()                          {}
func (NopRecorder) Retried()                            {}
func (NopRecorder) Failed()                             {}
func (NopRecorder) QueueDepth(int)                      {}
func (NopRecorder) ObserveDelivery(time.Duration, bool) {}
func (NopRecorder) ResultEvicted(string)                {}

var _ Recorder = NopRecorder{}
