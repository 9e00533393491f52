// Package async provides small generic helpers for running computations in
// their own goroutines and collecting their outcomes.
//
// Go starts a function and returns a Future; Await, AwaitContext, and Done
// observe it. WaitAll joins a group of futures without short-circuiting,
// returning every result and error by position — the shape batch processing
// wants, where one failed item must not hide the others.
//
// Panics inside a task are recovered and returned as errors wrapping
// ErrPanic.
//
// # Usage
//
//	futures := make([]*async.Future[bool], 0, len(ids))
//	for _, id := range ids {
//	    futures = append(futures, async.Go(ctx, func(ctx context.Context) (bool, error) {
//	        return svc.Ping(ctx, id)
//	    }))
//	}
//	results, errs := async.WaitAll(futures...)
package async
