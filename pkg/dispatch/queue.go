package dispatch

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/notifkit/notifkit/pkg/logger"
	"github.com/notifkit/notifkit/pkg/notification"
)

// DeliverFunc performs one delivery attempt. A nil return is terminal success;
// any error is treated as retryable until the retry budget is spent. The queue
// imposes no deadline on the call — timeouts are the delivery function's
// responsibility.
type DeliverFunc func(ctx context.Context, n notification.Notification) error

// Queue is an in-process at-most-once notification dispatcher. Submissions
// are deduplicated by notification identity, drained one at a time by a single
// actor goroutine, retried on failure up to the configured budget, and their
// terminal results are kept in a bounded expiry cache. Completion events fan
// out to registered listeners off the drain path.
type Queue struct {
	deliver    DeliverFunc
	maxRetries int
	logger     *slog.Logger
	rec        Recorder

	// mu guards pending, owned, attempts, and waiters. Never held across a
	// delivery call.
	mu sync.Mutex
	// pending holds accepted notifications in drain order.
	pending []notification.Notification
	// owned tracks identities queued or mid-delivery.
	owned map[string]struct{}
	// attempts counts failed deliveries per retrying identity.
	attempts map[string]int
	// waiters holds submission channels awaiting a terminal result.
	waiters map[string][]chan notification.Result

	results   *resultCache
	listeners *listenerSet

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a queue draining into the given delivery function and starts its
// drain actor. The queue must be released with Close.
func New(deliver DeliverFunc, opts ...Option) (*Queue, error) {
	if deliver == nil {
		return nil, ErrNilDeliverFunc
	}

	options := &options{
		maxRetries:      3,
		resultCacheSize: 1000,
		resultTTL:       10 * time.Minute,
		logger:          slog.Default(),
		recorder:        NopRecorder{},
	}
	for _, opt := range opts {
		opt(options)
	}

	q := &Queue{
		deliver:    deliver,
		maxRetries: options.maxRetries,
		logger:     options.logger,
		rec:        options.recorder,
		owned:      make(map[string]struct{}),
		attempts:   make(map[string]int),
		waiters:    make(map[string][]chan notification.Result),
		listeners:  newListenerSet(options.logger),
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	q.results = newResultCache(options.resultCacheSize, options.resultTTL, options.sweepInterval,
		func(id, reason string) { q.rec.ResultEvicted(reason) })

	q.wg.Add(1)
	go q.run()

	return q, nil
}

// Submit queues n and blocks until its identity reaches a terminal outcome.
//
// Invalid notifications are rejected synchronously and never enter the queue.
// If a terminal result for the identity is already cached, that result is
// returned without re-delivery. If the identity is currently owned by the
// queue (pending or mid-retry), the call is a no-op returning (nil, nil):
// another submission already carries it to completion and the outcome is
// observable through Result or a listener.
//
// ctx bounds only the wait, not the work: cancelling it abandons the result
// without withdrawing the accepted notification.
func (q *Queue) Submit(ctx context.Context, n notification.Notification) (*notification.Result, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if q.closed() {
		return nil, ErrQueueClosed
	}

	q.mu.Lock()
	if res, ok := q.results.get(n.ID); ok {
		q.mu.Unlock()
		return &res, nil
	}
	if _, ok := q.owned[n.ID]; ok {
		q.mu.Unlock()
		q.rec.DuplicateDropped()
		return nil, nil
	}
	ch := q.accept(n)
	depth := len(q.pending)
	q.mu.Unlock()

	q.rec.Accepted()
	q.rec.QueueDepth(depth)
	q.signal()

	return q.await(ctx, n.ID, ch)
}

// SubmitBatch queues every valid notification from ns and blocks until each
// accepted identity reaches a terminal outcome. The caller's slice is never
// mutated: ordering happens on an internal copy, sorted descending by priority
// with ties keeping their arrival order. Invalid entries and duplicates of
// already-owned or already-resolved identities are skipped.
func (q *Queue) SubmitBatch(ctx context.Context, ns []notification.Notification) error {
	if q.closed() {
		return ErrQueueClosed
	}

	batch := make([]notification.Notification, 0, len(ns))
	for _, n := range ns {
		if err := n.Validate(); err != nil {
			q.logger.Debug("skipping invalid notification in batch",
				logger.NotificationID(n.ID),
				logger.Error(err))
			continue
		}
		batch = append(batch, n)
	}
	if len(batch) == 0 {
		return nil
	}

	slices.SortStableFunc(batch, func(a, b notification.Notification) int {
		return cmp.Compare(b.Priority, a.Priority)
	})

	type wait struct {
		id string
		ch chan notification.Result
	}
	waits := make([]wait, 0, len(batch))

	q.mu.Lock()
	for _, n := range batch {
		if _, ok := q.results.get(n.ID); ok {
			continue
		}
		if _, ok := q.owned[n.ID]; ok {
			continue
		}
		waits = append(waits, wait{id: n.ID, ch: q.accept(n)})
	}
	accepted := len(waits)
	skipped := len(batch) - accepted
	depth := len(q.pending)
	q.mu.Unlock()

	for range accepted {
		q.rec.Accepted()
	}
	for range skipped {
		q.rec.DuplicateDropped()
	}
	if accepted == 0 {
		return nil
	}
	q.rec.QueueDepth(depth)
	q.signal()

	for _, w := range waits {
		if _, err := q.await(ctx, w.id, w.ch); err != nil {
			return err
		}
	}
	return nil
}

// accept must be called with the lock held; the identity must be unowned and
// unresolved. It claims ownership before the item becomes visible to the
// drain actor, so a duplicate submission arriving mid-delivery is dropped
// rather than double-queued.
func (q *Queue) accept(n notification.Notification) chan notification.Result {
	q.owned[n.ID] = struct{}{}
	q.pending = append(q.pending, n)
	ch := make(chan notification.Result, 1)
	q.waiters[n.ID] = append(q.waiters[n.ID], ch)
	return ch
}

// await blocks until the identity's terminal result arrives on ch, the
// context is done, or the queue closes. Close and completion can race; the
// result wins if it is already there.
func (q *Queue) await(ctx context.Context, id string, ch chan notification.Result) (*notification.Result, error) {
	select {
	case res := <-ch:
		return &res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.done:
		select {
		case res := <-ch:
			return &res, nil
		default:
		}
		if res, ok := q.results.get(id); ok {
			return &res, nil
		}
		return nil, ErrQueueClosed
	}
}

// Result returns the cached terminal result for id. The lookup has no side
// effects and never extends the entry's lifetime.
func (q *Queue) Result(id string) (notification.Result, bool) {
	return q.results.get(id)
}

// Len reports how many notifications are queued and not yet being delivered.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// AddListener registers l for terminal results and returns an idempotent
// unsubscribe handle. Registering a listener equal to an existing one is a
// no-op; the handle then removes the original registration.
func (q *Queue) AddListener(l Listener) func() {
	return q.listeners.add(l)
}

// RemoveListener drops the registration equal to l. ListenerFunc values have
// no identity and can only be removed through their AddListener handle.
func (q *Queue) RemoveListener(l Listener) {
	q.listeners.remove(l)
}

// ClearListeners removes all listener registrations.
func (q *Queue) ClearListeners() {
	q.listeners.clear()
}

// ClearResults forgets all cached terminal results. Identities whose results
// are cleared become eligible for re-delivery on a later submission.
func (q *Queue) ClearResults() {
	q.results.clearAll()
}

// Close stops the drain actor and the cache sweeper. An in-flight delivery
// runs to completion; remaining pending items are dropped and their waiters
// fail with ErrQueueClosed. Safe to call more than once.
func (q *Queue) Close() error {
	q.closeOnce.Do(func() {
		close(q.done)
		q.wg.Wait()
		q.results.stop()
	})
	return nil
}

func (q *Queue) closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// signal wakes the drain actor. The buffered channel coalesces concurrent
// triggers: a drain pass is either running or pending, never two at once.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) run() {
	defer q.wg.Done()

	for {
		select {
		case <-q.wake:
			q.drain()
		case <-q.done:
			return
		}
	}
}

// drain processes pending items one at a time until the list is empty. The
// lock is never held across a delivery call.
func (q *Queue) drain() {
	for {
		if q.closed() {
			return
		}

		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		n := q.pending[0]
		q.pending = q.pending[1:]
		if len(q.pending) == 0 {
			q.pending = nil
		}
		if _, ok := q.results.get(n.ID); ok {
			// A duplicate copy of an identity that resolved while this
			// copy sat in the queue. Drop it without a delivery attempt.
			q.mu.Unlock()
			q.rec.DuplicateDropped()
			continue
		}
		if _, ok := q.owned[n.ID]; !ok {
			// Re-claim a copy released for retry before delivering it, so
			// submissions arriving mid-attempt dedupe against it.
			q.owned[n.ID] = struct{}{}
		}
		q.mu.Unlock()

		start := time.Now()
		err := q.safeDeliver(n)
		q.rec.ObserveDelivery(time.Since(start), err == nil)

		if err == nil {
			q.complete(notification.Succeeded(n.ID))
			q.rec.Delivered()
			continue
		}

		q.mu.Lock()
		attempt := q.attempts[n.ID]
		if attempt < q.maxRetries {
			q.attempts[n.ID] = attempt + 1
			// Release ownership for the retry window and requeue at the
			// tail so one failing item cannot starve the rest.
			delete(q.owned, n.ID)
			q.pending = append(q.pending, n)
			q.mu.Unlock()

			q.rec.Retried()
			q.logger.Debug("delivery failed, requeued",
				logger.NotificationID(n.ID),
				slog.Int("attempt", attempt+1),
				slog.Int("max_retries", q.maxRetries),
				logger.Error(err))
			continue
		}
		q.mu.Unlock()

		q.complete(notification.Failed(n.ID, err.Error()))
		q.rec.Failed()
		q.logger.Error("delivery failed permanently",
			logger.NotificationID(n.ID),
			slog.Int("attempts", q.maxRetries+1),
			logger.Error(err))
	}
}

func (q *Queue) safeDeliver(n notification.Notification) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("panic in delivery function: %v", r)
			q.logger.Error("delivery function panicked",
				logger.NotificationID(n.ID),
				slog.Any("panic", r))
		}
	}()
	return q.deliver(context.Background(), n)
}

// complete records the terminal result for an identity, releases all its
// bookkeeping, unblocks waiters, and schedules the listener fan-out. The
// result cache is the durable dedup record from here on.
func (q *Queue) complete(res notification.Result) {
	q.mu.Lock()
	q.results.set(res)
	delete(q.owned, res.NotificationID)
	delete(q.attempts, res.NotificationID)
	ws := q.waiters[res.NotificationID]
	delete(q.waiters, res.NotificationID)
	depth := len(q.pending)
	q.mu.Unlock()

	q.rec.QueueDepth(depth)
	for _, ch := range ws {
		ch <- res
	}
	q.listeners.notify(res)
}
