package notification

import "time"

// Result is the terminal outcome of one notification identity. Results are
// created by the dispatch queue only; everything else treats them as read-only.
type Result struct {
	NotificationID string    `json:"notification_id"`
	Success        bool      `json:"success"`
	Error          string    `json:"error,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Succeeded builds a success result stamped with the current time.
func Succeeded(id string) Result {
	return Result{
		NotificationID: id,
		Success:        true,
		Timestamp:      time.Now().UTC(),
	}
}

// Failed builds a failure result carrying the reason delivery gave up.
func Failed(id, reason string) Result {
	return Result{
		NotificationID: id,
		Success:        false,
		Error:          reason,
		Timestamp:      time.Now().UTC(),
	}
}
