package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind represents the notification kind/severity.
type Kind string

const (
	KindInfo     Kind = "info"
	KindWarning  Kind = "warning"
	KindAlert    Kind = "alert"
	KindCritical Kind = "critical"
)

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindInfo, KindWarning, KindAlert, KindCritical:
		return true
	}
	return false
}

// Priority returns the dispatch priority for the kind. The mapping is total:
// unknown kinds fall back to the lowest priority rather than a zero value, so
// a malformed record is delivered late instead of reordered ahead of real work.
func (k Kind) Priority() int {
	switch k {
	case KindCritical:
		return PriorityCritical
	case KindAlert:
		return PriorityAlert
	case KindWarning:
		return PriorityWarning
	default:
		return PriorityInfo
	}
}

// Priority values assigned per kind. Higher values drain first within a batch.
const (
	PriorityInfo     = 1
	PriorityWarning  = 3
	PriorityAlert    = 5
	PriorityCritical = 10
)

// Notification is an immutable delivery request. Instances are passed and
// stored by value; once submitted, nothing mutates them.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// New builds a notification with a generated identity and the priority derived
// from kind.
func New(userID, message string, kind Kind) (Notification, error) {
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		Kind:      kind,
		Priority:  kind.Priority(),
		CreatedAt: time.Now().UTC(),
	}
	if err := n.Validate(); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// Validate checks the fields required for dispatch. All violations are
// reported together, each joined with ErrInvalidNotification.
func (n Notification) Validate() error {
	var errs []error
	if n.ID == "" {
		errs = append(errs, ErrEmptyID)
	}
	if n.UserID == "" {
		errs = append(errs, ErrEmptyUserID)
	}
	if n.Message == "" {
		errs = append(errs, ErrEmptyMessage)
	}
	if !n.Kind.Valid() {
		errs = append(errs, ErrInvalidKind)
	}
	if len(errs) > 0 {
		return errors.Join(ErrInvalidNotification, errors.Join(errs...))
	}
	return nil
}
