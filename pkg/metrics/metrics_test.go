package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifkit/notifkit/pkg/dispatch"
	"github.com/notifkit/notifkit/pkg/notification"
)

func TestDispatchRecorder(t *testing.T) {
	t.Parallel()

	rec := NewDispatchRecorder(prometheus.NewRegistry())

	rec.Accepted()
	rec.Accepted()
	rec.DuplicateDropped()
	rec.Delivered()
	rec.Retried()
	rec.Failed()
	rec.QueueDepth(7)
	rec.ObserveDelivery(250*time.Millisecond, true)
	rec.ObserveDelivery(100*time.Millisecond, false)
	rec.ResultEvicted("ttl")
	rec.ResultEvicted("ttl")
	rec.ResultEvicted("size")

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.accepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.duplicates))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.delivered))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.retried))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.failed))
	assert.Equal(t, 7.0, testutil.ToFloat64(rec.queueDepth))

	// One series per outcome label.
	assert.Equal(t, 2, testutil.CollectAndCount(rec.duration))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.evictions.WithLabelValues("ttl")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.evictions.WithLabelValues("size")))
}

func TestDispatchRecorder_DefaultRegisterer(t *testing.T) {
	// Not parallel: swaps the process-wide default registerer.
	orig := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	t.Cleanup(func() { prometheus.DefaultRegisterer = orig })

	rec := NewDispatchRecorder(nil)
	rec.Accepted()
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.accepted))
}

func TestDispatchRecorder_WiredIntoQueue(t *testing.T) {
	t.Parallel()

	rec := NewDispatchRecorder(prometheus.NewRegistry())

	q, err := dispatch.New(
		func(ctx context.Context, n notification.Notification) error { return nil },
		dispatch.WithRecorder(rec),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })

	n, err := notification.New("user-1", "backup finished", notification.KindInfo)
	require.NoError(t, err)

	res, err := q.Submit(context.Background(), n)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.True(t, res.Success)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.accepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.delivered))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.duration))
}
