package dispatch

import "errors"

// Common errors
var (
	// ErrNilDeliverFunc is returned when a queue is constructed without a delivery function
	ErrNilDeliverFunc = errors.New("deliver function cannot be nil")

	// ErrQueueClosed is returned by submissions on a queue that has been closed
	ErrQueueClosed = errors.New("dispatch queue is closed")
)
