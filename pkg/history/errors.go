package history

import "errors"

var (
	// ErrRecordNotFound is returned when the requested record does not exist.
	ErrRecordNotFound = errors.New("history record not found")

	// ErrInvalidRecord is returned when a record is missing its identity or
	// its user.
	ErrInvalidRecord = errors.New("invalid history record")

	// ErrInvalidConfig is returned when a backend configuration is invalid.
	ErrInvalidConfig = errors.New("invalid history storage config")

	// ErrNilClient is returned when a backend is constructed without its
	// client.
	ErrNilClient = errors.New("nil storage client")

	// ErrNilStorage is returned when retention is constructed without a
	// storage to purge.
	ErrNilStorage = errors.New("nil history storage")
)
