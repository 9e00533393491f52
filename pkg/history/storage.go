package history

import (
	"context"
	"slices"
	"time"

	"github.com/notifkit/notifkit/pkg/notification"
)

// Storage handles history persistence and retrieval.
type Storage interface {
	// Create stores a new record. Storing an identity twice overwrites the
	// previous record.
	Create(ctx context.Context, rec Record) error

	// Get retrieves a single record.
	Get(ctx context.Context, userID, recordID string) (*Record, error)

	// List returns records for a user, newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Record, error)

	// MarkRead marks record(s) as read.
	MarkRead(ctx context.Context, userID string, recordIDs ...string) error

	// Delete removes record(s).
	Delete(ctx context.Context, userID string, recordIDs ...string) error

	// CountUnread returns the unread count for a user.
	CountUnread(ctx context.Context, userID string) (int, error)

	// PurgeOlderThan removes records delivered before the cutoff across all
	// users and reports how many were removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// ListOptions provides filtering and pagination for listing records.
type ListOptions struct {
	Limit      int                 // maximum records to return (0 = no limit)
	Offset     int                 // records to skip for pagination
	OnlyUnread bool                // when true, only unread records
	Kinds      []notification.Kind // if set, only records of these kinds
	Since      *time.Time          // if set, only records delivered at or after this time
}

// matches reports whether a record passes the configured filters.
func (o ListOptions) matches(rec Record) bool {
	if o.OnlyUnread && rec.Read {
		return false
	}
	if len(o.Kinds) > 0 && !slices.Contains(o.Kinds, rec.Kind) {
		return false
	}
	if o.Since != nil && rec.DeliveredAt.Before(*o.Since) {
		return false
	}
	return true
}

// paginate applies offset and limit to an already filtered, already sorted
// slice.
func paginate(recs []Record, limit, offset int) []Record {
	if offset >= len(recs) {
		return []Record{}
	}
	recs = recs[offset:]
	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	return recs
}
