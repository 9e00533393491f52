package async

import "errors"

// ErrPanic wraps a panic recovered from a function started with Go.
var ErrPanic = errors.New("async task panicked")
