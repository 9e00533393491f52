package history

import (
	"time"

	"github.com/notifkit/notifkit/pkg/notification"
)

// Record is one terminal dispatch outcome kept in a user's history. The record
// identity is the notification identity, so history lookups and dispatch
// results join on the same key.
type Record struct {
	ID          string            `json:"id" bson:"_id"`
	UserID      string            `json:"user_id" bson:"user_id"`
	Message     string            `json:"message" bson:"message"`
	Kind        notification.Kind `json:"kind" bson:"kind"`
	Priority    int               `json:"priority" bson:"priority"`
	Success     bool              `json:"success" bson:"success"`
	Error       string            `json:"error,omitempty" bson:"error,omitempty"`
	Read        bool              `json:"read" bson:"read"`
	ReadAt      *time.Time        `json:"read_at,omitempty" bson:"read_at,omitempty"`
	DeliveredAt time.Time         `json:"delivered_at" bson:"delivered_at"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
}

// FromResult builds the history record for a notification's terminal outcome.
func FromResult(n notification.Notification, res notification.Result) Record {
	return Record{
		ID:          n.ID,
		UserID:      n.UserID,
		Message:     n.Message,
		Kind:        n.Kind,
		Priority:    n.Priority,
		Success:     res.Success,
		Error:       res.Error,
		DeliveredAt: res.Timestamp,
		CreatedAt:   n.CreatedAt,
	}
}

// MarkAsRead marks the record as read with the current timestamp.
func (r *Record) MarkAsRead() {
	r.Read = true
	now := time.Now().UTC()
	r.ReadAt = &now
}
