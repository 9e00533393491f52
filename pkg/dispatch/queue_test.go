package dispatch_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifkit/notifkit/pkg/dispatch"
	"github.com/notifkit/notifkit/pkg/notification"
)

// attemptLog records delivery invocations per notification identity.
type attemptLog struct {
	mu    sync.Mutex
	calls []string
}

func (a *attemptLog) record(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, id)
}

func (a *attemptLog) count(id string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, c := range a.calls {
		if c == id {
			n++
		}
	}
	return n
}

func (a *attemptLog) order() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.calls))
	copy(out, a.calls)
	return out
}

// countingListener is a comparable listener for set-semantics tests.
type countingListener struct {
	mu sync.Mutex
	n  int
}

func (l *countingListener) HandleResult(notification.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.n++
}

func (l *countingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n
}

func newQueue(t *testing.T, deliver dispatch.DeliverFunc, opts ...dispatch.Option) *dispatch.Queue {
	t.Helper()

	opts = append(opts, dispatch.WithLogger(slog.New(slog.DiscardHandler)))
	q, err := dispatch.New(deliver, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func newTestNotification(id string) notification.Notification {
	return notification.Notification{
		ID:        id,
		UserID:    "user-1",
		Message:   "test message",
		Kind:      notification.KindInfo,
		Priority:  notification.PriorityInfo,
		CreatedAt: time.Now(),
	}
}

func succeedAlways(log *attemptLog) dispatch.DeliverFunc {
	return func(_ context.Context, n notification.Notification) error {
		log.record(n.ID)
		return nil
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil deliver func", func(t *testing.T) {
		t.Parallel()

		_, err := dispatch.New(nil)
		assert.ErrorIs(t, err, dispatch.ErrNilDeliverFunc)
	})
}

func TestQueue_Submit(t *testing.T) {
	t.Parallel()

	t.Run("delivers and returns success result", func(t *testing.T) {
		t.Parallel()

		log := &attemptLog{}
		q := newQueue(t, succeedAlways(log))

		res, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)
		require.NotNil(t, res)

		assert.True(t, res.Success)
		assert.Equal(t, "n1", res.NotificationID)
		assert.Empty(t, res.Error)
		assert.Equal(t, 1, log.count("n1"))
		assert.Equal(t, 0, q.Len())
	})

	t.Run("rejects invalid notification", func(t *testing.T) {
		t.Parallel()

		log := &attemptLog{}
		q := newQueue(t, succeedAlways(log))

		n := newTestNotification("n1")
		n.Message = ""
		_, err := q.Submit(context.Background(), n)
		require.Error(t, err)

		assert.ErrorIs(t, err, notification.ErrInvalidNotification)
		assert.ErrorIs(t, err, notification.ErrEmptyMessage)
		assert.Equal(t, 0, q.Len())
		assert.Equal(t, 0, log.count("n1"))
	})

	t.Run("fails twice then succeeds", func(t *testing.T) {
		t.Parallel()

		log := &attemptLog{}
		deliver := func(_ context.Context, n notification.Notification) error {
			log.record(n.ID)
			if log.count(n.ID) <= 2 {
				return errors.New("smtp unavailable")
			}
			return nil
		}
		q := newQueue(t, deliver, dispatch.WithMaxRetries(3))

		res, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)
		require.NotNil(t, res)

		assert.True(t, res.Success)
		assert.Equal(t, 3, log.count("n1"))
	})

	t.Run("exhausts retries and records failure", func(t *testing.T) {
		t.Parallel()

		log := &attemptLog{}
		deliver := func(_ context.Context, n notification.Notification) error {
			log.record(n.ID)
			return errors.New("smtp unavailable")
		}
		q := newQueue(t, deliver, dispatch.WithMaxRetries(2))

		res, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)
		require.NotNil(t, res)

		assert.False(t, res.Success)
		assert.Equal(t, "smtp unavailable", res.Error)
		assert.Equal(t, 3, log.count("n1"))

		cached, ok := q.Result("n1")
		require.True(t, ok)
		assert.False(t, cached.Success)
		assert.NotEmpty(t, cached.Error)
	})

	t.Run("zero retry budget fails on first error", func(t *testing.T) {
		t.Parallel()

		log := &attemptLog{}
		deliver := func(_ context.Context, n notification.Notification) error {
			log.record(n.ID)
			return errors.New("boom")
		}
		q := newQueue(t, deliver, dispatch.WithMaxRetries(0))

		res, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)
		require.NotNil(t, res)

		assert.False(t, res.Success)
		assert.Equal(t, 1, log.count("n1"))
	})

	t.Run("panicking delivery counts as failure", func(t *testing.T) {
		t.Parallel()

		log := &attemptLog{}
		deliver := func(_ context.Context, n notification.Notification) error {
			log.record(n.ID)
			panic("template rendering blew up")
		}
		q := newQueue(t, deliver, dispatch.WithMaxRetries(1))

		res, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)
		require.NotNil(t, res)

		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "template rendering blew up")
		assert.Equal(t, 2, log.count("n1"))
	})

	t.Run("resubmission of resolved identity returns cached result", func(t *testing.T) {
		t.Parallel()

		log := &attemptLog{}
		q := newQueue(t, succeedAlways(log))

		first, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)
		require.NotNil(t, second)

		assert.Equal(t, *first, *second)
		assert.Equal(t, 1, log.count("n1"), "resolved identity must not be re-delivered")
	})

	t.Run("concurrent duplicate is a no-op", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		release := make(chan struct{})
		log := &attemptLog{}
		deliver := func(_ context.Context, n notification.Notification) error {
			log.record(n.ID)
			close(started)
			<-release
			return nil
		}
		q := newQueue(t, deliver)

		listener := &countingListener{}
		q.AddListener(listener)

		type submitResult struct {
			res *notification.Result
			err error
		}
		firstDone := make(chan submitResult, 1)
		go func() {
			res, err := q.Submit(context.Background(), newTestNotification("n1"))
			firstDone <- submitResult{res, err}
		}()

		<-started

		// Same identity submitted while the first copy is mid-delivery.
		dup, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)
		assert.Nil(t, dup)

		close(release)

		first := <-firstDone
		require.NoError(t, first.err)
		require.NotNil(t, first.res)
		assert.True(t, first.res.Success)

		assert.Equal(t, 1, log.count("n1"))
		assert.Eventually(t, func() bool {
			return listener.count() == 1
		}, time.Second, 10*time.Millisecond, "exactly one listener notification per identity")
	})

	t.Run("context cancellation abandons the wait, not the work", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		deliver := func(_ context.Context, _ notification.Notification) error {
			<-release
			return nil
		}
		q := newQueue(t, deliver)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		_, err := q.Submit(ctx, newTestNotification("n1"))
		assert.ErrorIs(t, err, context.Canceled)

		close(release)

		assert.Eventually(t, func() bool {
			res, ok := q.Result("n1")
			return ok && res.Success
		}, time.Second, 10*time.Millisecond, "delivery must finish despite the abandoned wait")
	})

	t.Run("closed queue rejects submissions", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, succeedAlways(&attemptLog{}))
		require.NoError(t, q.Close())

		_, err := q.Submit(context.Background(), newTestNotification("n1"))
		assert.ErrorIs(t, err, dispatch.ErrQueueClosed)

		err = q.SubmitBatch(context.Background(), []notification.Notification{newTestNotification("n2")})
		assert.ErrorIs(t, err, dispatch.ErrQueueClosed)
	})
}

func TestQueue_SubmitBatch(t *testing.T) {
	t.Parallel()

	t.Run("drains in priority order, ties by arrival", func(t *testing.T) {
		t.Parallel()

		log := &attemptLog{}
		q := newQueue(t, succeedAlways(log))

		batch := []notification.Notification{
			newTestNotification("info-1"),
			newTestNotification("critical-1"),
			newTestNotification("warning-1"),
			newTestNotification("alert-1"),
			newTestNotification("info-2"),
		}
		batch[0].Priority = notification.PriorityInfo
		batch[1].Priority = notification.PriorityCritical
		batch[2].Priority = notification.PriorityWarning
		batch[3].Priority = notification.PriorityAlert
		batch[4].Priority = notification.PriorityInfo

		require.NoError(t, q.SubmitBatch(context.Background(), batch))

		assert.Equal(t, []string{"critical-1", "alert-1", "warning-1", "info-1", "info-2"}, log.order())
	})

	t.Run("never mutates the caller's slice", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, succeedAlways(&attemptLog{}))

		batch := []notification.Notification{
			newTestNotification("low"),
			newTestNotification("high"),
		}
		batch[0].Priority = notification.PriorityInfo
		batch[1].Priority = notification.PriorityCritical

		snapshot := make([]notification.Notification, len(batch))
		copy(snapshot, batch)

		require.NoError(t, q.SubmitBatch(context.Background(), batch))

		assert.Equal(t, snapshot, batch)
	})

	t.Run("skips invalid entries and keeps the rest", func(t *testing.T) {
		t.Parallel()

		log := &attemptLog{}
		q := newQueue(t, succeedAlways(log))

		bad := newTestNotification("bad")
		bad.UserID = ""
		batch := []notification.Notification{bad, newTestNotification("good")}

		require.NoError(t, q.SubmitBatch(context.Background(), batch))

		assert.Equal(t, 0, log.count("bad"))
		assert.Equal(t, 1, log.count("good"))
	})

	t.Run("requeues a failing item at the tail", func(t *testing.T) {
		t.Parallel()

		log := &attemptLog{}
		deliver := func(_ context.Context, n notification.Notification) error {
			log.record(n.ID)
			if n.ID == "flaky" && log.count("flaky") == 1 {
				return errors.New("first attempt fails")
			}
			return nil
		}
		q := newQueue(t, deliver, dispatch.WithMaxRetries(1))

		batch := []notification.Notification{
			newTestNotification("flaky"),
			newTestNotification("steady"),
		}
		require.NoError(t, q.SubmitBatch(context.Background(), batch))

		assert.Equal(t, []string{"flaky", "steady", "flaky"}, log.order())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, succeedAlways(&attemptLog{}))

		require.NoError(t, q.SubmitBatch(context.Background(), nil))
		assert.Equal(t, 0, q.Len())
	})
}

func TestQueue_Results(t *testing.T) {
	t.Parallel()

	t.Run("cache size bound evicts oldest inserted", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, succeedAlways(&attemptLog{}), dispatch.WithResultCacheSize(2))

		for _, id := range []string{"n1", "n2", "n3"} {
			_, err := q.Submit(context.Background(), newTestNotification(id))
			require.NoError(t, err)
		}

		_, ok := q.Result("n1")
		assert.False(t, ok, "oldest result must be evicted at capacity")
		_, ok = q.Result("n2")
		assert.True(t, ok)
		_, ok = q.Result("n3")
		assert.True(t, ok)
	})

	t.Run("results expire after the ttl despite constant reads", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, succeedAlways(&attemptLog{}),
			dispatch.WithResultTTL(50*time.Millisecond),
			dispatch.WithSweepInterval(10*time.Millisecond))

		_, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)

		_, ok := q.Result("n1")
		require.True(t, ok)

		// Polling is the point: reads must not refresh the entry's lifetime.
		assert.Eventually(t, func() bool {
			_, ok := q.Result("n1")
			return !ok
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("clear results permits re-delivery", func(t *testing.T) {
		t.Parallel()

		log := &attemptLog{}
		q := newQueue(t, succeedAlways(log))

		_, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)
		require.Equal(t, 1, log.count("n1"))

		q.ClearResults()

		_, ok := q.Result("n1")
		assert.False(t, ok)

		_, err = q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)
		assert.Equal(t, 2, log.count("n1"))
	})
}

func TestQueue_Listeners(t *testing.T) {
	t.Parallel()

	t.Run("duplicate registration is a no-op", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, succeedAlways(&attemptLog{}))

		listener := &countingListener{}
		q.AddListener(listener)
		q.AddListener(listener)

		_, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			return listener.count() == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("unsubscribe handle stops notifications", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, succeedAlways(&attemptLog{}))

		var mu sync.Mutex
		seen := 0
		unsubscribe := q.AddListener(dispatch.ListenerFunc(func(notification.Result) {
			mu.Lock()
			seen++
			mu.Unlock()
		}))

		_, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)
		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return seen == 1
		}, time.Second, 10*time.Millisecond)

		unsubscribe()
		unsubscribe() // idempotent

		_, err = q.Submit(context.Background(), newTestNotification("n2"))
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, seen)
	})

	t.Run("remove listener by value", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, succeedAlways(&attemptLog{}))

		listener := &countingListener{}
		q.AddListener(listener)
		q.RemoveListener(listener)

		_, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, 0, listener.count())
	})

	t.Run("panicking listener does not block the others", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, succeedAlways(&attemptLog{}))

		q.AddListener(dispatch.ListenerFunc(func(notification.Result) {
			panic("listener bug")
		}))
		healthy := &countingListener{}
		q.AddListener(healthy)

		_, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			return healthy.count() == 1
		}, time.Second, 10*time.Millisecond)

		// Draining keeps working after the panic.
		res, err := q.Submit(context.Background(), newTestNotification("n2"))
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.True(t, res.Success)
	})

	t.Run("clear listeners removes everything", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, succeedAlways(&attemptLog{}))

		first := &countingListener{}
		second := &countingListener{}
		q.AddListener(first)
		q.AddListener(second)
		q.ClearListeners()

		_, err := q.Submit(context.Background(), newTestNotification("n1"))
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, 0, first.count())
		assert.Equal(t, 0, second.count())
	})
}

func TestQueue_Len(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	deliver := func(_ context.Context, _ notification.Notification) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}
	q := newQueue(t, deliver)

	go func() {
		_, _ = q.Submit(context.Background(), newTestNotification("n1"))
	}()
	<-started

	// n1 left the pending list when its delivery began; queue two more.
	go func() {
		_, _ = q.Submit(context.Background(), newTestNotification("n2"))
	}()
	go func() {
		_, _ = q.Submit(context.Background(), newTestNotification("n3"))
	}()

	assert.Eventually(t, func() bool {
		return q.Len() == 2
	}, time.Second, 5*time.Millisecond)

	close(release)

	assert.Eventually(t, func() bool {
		return q.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestQueue_Close(t *testing.T) {
	t.Parallel()

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		q := newQueue(t, succeedAlways(&attemptLog{}))
		require.NoError(t, q.Close())
		require.NoError(t, q.Close())
	})

	t.Run("in-flight delivery completes", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		release := make(chan struct{})
		deliver := func(_ context.Context, _ notification.Notification) error {
			close(started)
			<-release
			return nil
		}
		q := newQueue(t, deliver)

		done := make(chan *notification.Result, 1)
		go func() {
			res, _ := q.Submit(context.Background(), newTestNotification("n1"))
			done <- res
		}()
		<-started

		closed := make(chan struct{})
		go func() {
			_ = q.Close()
			close(closed)
		}()

		close(release)
		<-closed

		res := <-done
		require.NotNil(t, res)
		assert.True(t, res.Success)
	})
}
