package alerts

import "errors"

var (
	// ErrNilLookup is returned when the service is constructed without a user
	// lookup.
	ErrNilLookup = errors.New("nil user lookup")

	// ErrNilSender is returned when the service is constructed without a
	// sender.
	ErrNilSender = errors.New("nil sender")
)
