// Package dispatch implements an in-process, at-most-once notification queue
// with bounded retries, a bounded terminal-result cache, and asynchronous
// completion fan-out.
//
// The queue accepts notification values, deduplicates them by identity,
// serializes all delivery through a single drain actor, retries failed
// deliveries a fixed number of times, and records exactly one terminal result
// per identity. Callers can wait for the outcome synchronously (Submit),
// read it back later (Result), or observe it through listeners.
//
// # Architecture
//
//   - Drain actor: one goroutine owns the processing loop. Submissions wake
//     it through a coalescing channel, so concurrent triggers serialize
//     instead of racing; two drains never run at once.
//   - Ownership set: an identity is claimed before its delivery starts and
//     stays claimed until a terminal outcome, except for the deliberate
//     release between a failed attempt and its retry. Duplicate submissions
//     of a claimed identity are dropped.
//   - Retry state: failed-attempt counts are kept per identity and removed on
//     any terminal outcome. A delivery runs at most maxRetries+1 times per
//     identity.
//   - Result cache: terminal results live in a bounded insertion-ordered
//     cache with a TTL sweep. The cache doubles as the dedup record for
//     resolved identities; reads never refresh an entry.
//   - Listeners: completion events are fanned out on a separate goroutine
//     with per-listener panic recovery, so they can never stall draining.
//
// # Usage
//
//	q, err := dispatch.New(func(ctx context.Context, n notification.Notification) error {
//	    return mailer.Send(ctx, sender.Message{To: n.UserID, Body: n.Message})
//	}, dispatch.WithMaxRetries(3), dispatch.WithResultTTL(10*time.Minute))
//	if err != nil {
//	    return err
//	}
//	defer q.Close()
//
//	unsubscribe := q.AddListener(dispatch.ListenerFunc(func(res notification.Result) {
//	    log.Printf("notification %s: success=%v", res.NotificationID, res.Success)
//	}))
//	defer unsubscribe()
//
//	res, err := q.Submit(ctx, n)
//
// # Error Handling
//
// Submit rejects malformed notifications synchronously with
// notification.ErrInvalidNotification; such items never enter the queue.
// Delivery errors are internal: while attempts remain they trigger a retry,
// and once the budget is spent they surface only as a failed Result carrying
// the error text. ErrQueueClosed is returned by submissions racing Close.
// The queue itself never panics on a panicking delivery function or listener;
// both are recovered and logged.
package dispatch
