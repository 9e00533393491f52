package async

import (
	"context"
	"fmt"
)

// Future represents the eventual result of a computation running in its own
// goroutine. The zero value is not usable; obtain instances from Go.
type Future[T any] struct {
	result T
	err    error
	done   chan struct{}
}

// Go runs fn in a new goroutine and returns a Future for its outcome. A panic
// inside fn is captured and surfaced as an error wrapping ErrPanic, so one
// misbehaving task cannot take down the batch awaiting it. If ctx is already
// done, fn never runs and the future completes with the context error.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.result, f.err = fn(ctx)
	}()

	return f
}

// Await blocks until the computation finishes and returns its outcome.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// AwaitContext blocks until the computation finishes or ctx is done,
// whichever comes first. An abandoned computation keeps running; only the
// wait is cancelled.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done reports whether the computation has finished, without blocking.
func (f *Future[T]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// WaitAll blocks until every future completes and returns their results and
// errors by position. Unlike a short-circuiting join, every outcome is
// collected: position i failed if and only if errs[i] is non-nil.
func WaitAll[T any](futures ...*Future[T]) (results []T, errs []error) {
	results = make([]T, len(futures))
	errs = make([]error, len(futures))
	for i, f := range futures {
		results[i], errs[i] = f.Await()
	}
	return results, errs
}
