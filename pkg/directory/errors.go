package directory

import "errors"

// Common errors
var (
	// ErrUserNotFound is returned when no user exists for the given identifier
	ErrUserNotFound = errors.New("user not found")

	// ErrNilLookup is returned when a decorator is constructed without an underlying lookup
	ErrNilLookup = errors.New("lookup cannot be nil")
)
