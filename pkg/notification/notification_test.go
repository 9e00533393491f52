package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifkit/notifkit/pkg/notification"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("assigns identity and priority", func(t *testing.T) {
		t.Parallel()

		n, err := notification.New("user-1", "hello", notification.KindAlert)
		require.NoError(t, err)

		assert.NotEmpty(t, n.ID)
		assert.Equal(t, "user-1", n.UserID)
		assert.Equal(t, "hello", n.Message)
		assert.Equal(t, notification.KindAlert, n.Kind)
		assert.Equal(t, notification.PriorityAlert, n.Priority)
		assert.False(t, n.CreatedAt.IsZero())
	})

	t.Run("unique identities", func(t *testing.T) {
		t.Parallel()

		a, err := notification.New("u", "m", notification.KindInfo)
		require.NoError(t, err)
		b, err := notification.New("u", "m", notification.KindInfo)
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("rejects empty user id", func(t *testing.T) {
		t.Parallel()

		_, err := notification.New("", "hello", notification.KindInfo)
		require.Error(t, err)
		assert.ErrorIs(t, err, notification.ErrInvalidNotification)
		assert.ErrorIs(t, err, notification.ErrEmptyUserID)
	})

	t.Run("rejects empty message", func(t *testing.T) {
		t.Parallel()

		_, err := notification.New("user-1", "", notification.KindInfo)
		require.Error(t, err)
		assert.ErrorIs(t, err, notification.ErrEmptyMessage)
	})
}

func TestNotification_Validate(t *testing.T) {
	t.Parallel()

	valid := notification.Notification{
		ID:      "n1",
		UserID:  "u1",
		Message: "hi",
		Kind:    notification.KindInfo,
	}

	tests := []struct {
		name    string
		mutate  func(n notification.Notification) notification.Notification
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(n notification.Notification) notification.Notification { return n },
		},
		{
			name: "empty id",
			mutate: func(n notification.Notification) notification.Notification {
				n.ID = ""
				return n
			},
			wantErr: notification.ErrEmptyID,
		},
		{
			name: "empty user id",
			mutate: func(n notification.Notification) notification.Notification {
				n.UserID = ""
				return n
			},
			wantErr: notification.ErrEmptyUserID,
		},
		{
			name: "empty message",
			mutate: func(n notification.Notification) notification.Notification {
				n.Message = ""
				return n
			},
			wantErr: notification.ErrEmptyMessage,
		},
		{
			name: "unknown kind",
			mutate: func(n notification.Notification) notification.Notification {
				n.Kind = "verbose"
				return n
			},
			wantErr: notification.ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.mutate(valid).Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, notification.ErrInvalidNotification)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("reports all violations together", func(t *testing.T) {
		t.Parallel()

		err := notification.Notification{Kind: notification.KindInfo}.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, notification.ErrEmptyID)
		assert.ErrorIs(t, err, notification.ErrEmptyUserID)
		assert.ErrorIs(t, err, notification.ErrEmptyMessage)
	})
}

func TestKind_Priority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind notification.Kind
		want int
	}{
		{notification.KindCritical, 10},
		{notification.KindAlert, 5},
		{notification.KindWarning, 3},
		{notification.KindInfo, 1},
		{notification.Kind("bogus"), 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.kind.Priority())
		})
	}
}

func TestKind_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, notification.KindInfo.Valid())
	assert.True(t, notification.KindWarning.Valid())
	assert.True(t, notification.KindAlert.Valid())
	assert.True(t, notification.KindCritical.Valid())
	assert.False(t, notification.Kind("").Valid())
	assert.False(t, notification.Kind("success").Valid())
}

func TestResultConstructors(t *testing.T) {
	t.Parallel()

	t.Run("succeeded", func(t *testing.T) {
		t.Parallel()

		res := notification.Succeeded("n1")
		assert.Equal(t, "n1", res.NotificationID)
		assert.True(t, res.Success)
		assert.Empty(t, res.Error)
		assert.False(t, res.Timestamp.IsZero())
	})

	t.Run("failed", func(t *testing.T) {
		t.Parallel()

		res := notification.Failed("n2", "smtp unreachable")
		assert.Equal(t, "n2", res.NotificationID)
		assert.False(t, res.Success)
		assert.Equal(t, "smtp unreachable", res.Error)
		assert.False(t, res.Timestamp.IsZero())
	})
}
