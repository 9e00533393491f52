package history_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifkit/notifkit/pkg/history"
	"github.com/notifkit/notifkit/pkg/notification"
)

func newRecord(id, userID string, deliveredAt time.Time) history.Record {
	return history.Record{
		ID:          id,
		UserID:      userID,
		Message:     "message " + id,
		Kind:        notification.KindInfo,
		Priority:    notification.PriorityInfo,
		Success:     true,
		DeliveredAt: deliveredAt,
		CreatedAt:   deliveredAt,
	}
}

func TestMemory_Create(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("stores record", func(t *testing.T) {
		t.Parallel()

		store := history.NewMemory()
		require.NoError(t, store.Create(ctx, newRecord("rec-1", "user-1", now)))

		got, err := store.Get(ctx, "user-1", "rec-1")
		require.NoError(t, err)
		assert.Equal(t, "message rec-1", got.Message)
	})

	t.Run("requires record ID", func(t *testing.T) {
		t.Parallel()

		store := history.NewMemory()
		err := store.Create(ctx, history.Record{UserID: "user-1"})
		assert.ErrorIs(t, err, history.ErrInvalidRecord)
	})

	t.Run("requires user ID", func(t *testing.T) {
		t.Parallel()

		store := history.NewMemory()
		err := store.Create(ctx, history.Record{ID: "rec-1"})
		assert.ErrorIs(t, err, history.ErrInvalidRecord)
	})

	t.Run("overwrites on same identity", func(t *testing.T) {
		t.Parallel()

		store := history.NewMemory()
		rec := newRecord("rec-1", "user-1", now)
		require.NoError(t, store.Create(ctx, rec))

		rec.Message = "updated"
		require.NoError(t, store.Create(ctx, rec))

		got, err := store.Get(ctx, "user-1", "rec-1")
		require.NoError(t, err)
		assert.Equal(t, "updated", got.Message)

		list, err := store.List(ctx, "user-1", history.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("drops oldest past the cap", func(t *testing.T) {
		t.Parallel()

		store := history.NewMemory(history.WithMaxPerUser(2))
		for i := range 3 {
			id := fmt.Sprintf("rec-%d", i)
			require.NoError(t, store.Create(ctx, newRecord(id, "user-1", now.Add(time.Duration(i)*time.Minute))))
		}

		_, err := store.Get(ctx, "user-1", "rec-0")
		assert.ErrorIs(t, err, history.ErrRecordNotFound)

		list, err := store.List(ctx, "user-1", history.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestMemory_Get(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := history.NewMemory()
	require.NoError(t, store.Create(ctx, newRecord("rec-1", "user-1", time.Now().UTC())))

	t.Run("returns a copy", func(t *testing.T) {
		t.Parallel()

		got, err := store.Get(ctx, "user-1", "rec-1")
		require.NoError(t, err)

		got.Message = "mutated"

		again, err := store.Get(ctx, "user-1", "rec-1")
		require.NoError(t, err)
		assert.Equal(t, "message rec-1", again.Message)
	})

	t.Run("unknown record", func(t *testing.T) {
		t.Parallel()

		_, err := store.Get(ctx, "user-1", "missing")
		assert.ErrorIs(t, err, history.ErrRecordNotFound)
	})

	t.Run("wrong user", func(t *testing.T) {
		t.Parallel()

		_, err := store.Get(ctx, "user-2", "rec-1")
		assert.ErrorIs(t, err, history.ErrRecordNotFound)
	})
}

func TestMemory_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	seed := func(t *testing.T) *history.Memory {
		t.Helper()
		store := history.NewMemory()

		recs := []history.Record{
			newRecord("rec-1", "user-1", base),
			newRecord("rec-2", "user-1", base.Add(10*time.Minute)),
			newRecord("rec-3", "user-1", base.Add(20*time.Minute)),
			newRecord("rec-other", "user-2", base),
		}
		recs[1].Kind = notification.KindAlert
		recs[2].Read = true
		for _, rec := range recs {
			require.NoError(t, store.Create(ctx, rec))
		}
		return store
	}

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		list, err := seed(t).List(ctx, "user-1", history.ListOptions{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "rec-3", list[0].ID)
		assert.Equal(t, "rec-2", list[1].ID)
		assert.Equal(t, "rec-1", list[2].ID)
	})

	t.Run("only unread", func(t *testing.T) {
		t.Parallel()

		list, err := seed(t).List(ctx, "user-1", history.ListOptions{OnlyUnread: true})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "rec-2", list[0].ID)
		assert.Equal(t, "rec-1", list[1].ID)
	})

	t.Run("filter by kind", func(t *testing.T) {
		t.Parallel()

		list, err := seed(t).List(ctx, "user-1", history.ListOptions{
			Kinds: []notification.Kind{notification.KindAlert},
		})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "rec-2", list[0].ID)
	})

	t.Run("since cutoff", func(t *testing.T) {
		t.Parallel()

		since := base.Add(10 * time.Minute)
		list, err := seed(t).List(ctx, "user-1", history.ListOptions{Since: &since})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "rec-3", list[0].ID)
		assert.Equal(t, "rec-2", list[1].ID)
	})

	t.Run("limit and offset", func(t *testing.T) {
		t.Parallel()

		store := seed(t)

		page1, err := store.List(ctx, "user-1", history.ListOptions{Limit: 2})
		require.NoError(t, err)
		require.Len(t, page1, 2)
		assert.Equal(t, "rec-3", page1[0].ID)

		page2, err := store.List(ctx, "user-1", history.ListOptions{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, page2, 1)
		assert.Equal(t, "rec-1", page2[0].ID)
	})

	t.Run("offset past the end", func(t *testing.T) {
		t.Parallel()

		list, err := seed(t).List(ctx, "user-1", history.ListOptions{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		list, err := seed(t).List(ctx, "nobody", history.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestMemory_MarkRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()

	store := history.NewMemory()
	require.NoError(t, store.Create(ctx, newRecord("rec-1", "user-1", now)))
	require.NoError(t, store.Create(ctx, newRecord("rec-2", "user-1", now)))

	require.NoError(t, store.MarkRead(ctx, "user-1", "rec-1", "missing"))

	got, err := store.Get(ctx, "user-1", "rec-1")
	require.NoError(t, err)
	assert.True(t, got.Read)
	require.NotNil(t, got.ReadAt)

	untouched, err := store.Get(ctx, "user-1", "rec-2")
	require.NoError(t, err)
	assert.False(t, untouched.Read)

	unread, err := store.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}

func TestMemory_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()

	store := history.NewMemory()
	require.NoError(t, store.Create(ctx, newRecord("rec-1", "user-1", now)))
	require.NoError(t, store.Create(ctx, newRecord("rec-2", "user-1", now)))

	require.NoError(t, store.Delete(ctx, "user-1", "rec-1"))

	_, err := store.Get(ctx, "user-1", "rec-1")
	assert.ErrorIs(t, err, history.ErrRecordNotFound)

	_, err = store.Get(ctx, "user-1", "rec-2")
	assert.NoError(t, err)
}

func TestMemory_CountUnread(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()

	store := history.NewMemory()

	count, err := store.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	read := newRecord("rec-1", "user-1", now)
	read.Read = true
	require.NoError(t, store.Create(ctx, read))
	require.NoError(t, store.Create(ctx, newRecord("rec-2", "user-1", now)))
	require.NoError(t, store.Create(ctx, newRecord("rec-3", "user-1", now)))

	count, err = store.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMemory_PurgeOlderThan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()

	store := history.NewMemory()
	require.NoError(t, store.Create(ctx, newRecord("old-1", "user-1", now.Add(-48*time.Hour))))
	require.NoError(t, store.Create(ctx, newRecord("old-2", "user-2", now.Add(-36*time.Hour))))
	require.NoError(t, store.Create(ctx, newRecord("fresh", "user-1", now)))

	purged, err := store.PurgeOlderThan(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, purged)

	_, err = store.Get(ctx, "user-1", "old-1")
	assert.ErrorIs(t, err, history.ErrRecordNotFound)

	_, err = store.Get(ctx, "user-1", "fresh")
	assert.NoError(t, err)

	list, err := store.List(ctx, "user-2", history.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
