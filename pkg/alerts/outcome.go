package alerts

// Status classifies what happened to a send request.
type Status string

const (
	// StatusDelivered means the notification reached its terminal success.
	StatusDelivered Status = "delivered"
	// StatusFailed means delivery failed after exhausting retries, or the
	// request could not be carried at all.
	StatusFailed Status = "failed"
	// StatusQueued means the request was accepted but no terminal result was
	// visible to this call: the caller stopped waiting, or another submission
	// already carries the identity to completion.
	StatusQueued Status = "queued"
	// StatusRejected means a policy check refused the request before it
	// touched the queue.
	StatusRejected Status = "rejected"
)

// Outcome is the answer to a send request.
type Outcome struct {
	Status         Status `json:"status"`
	NotificationID string `json:"notification_id,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// Bool collapses the outcome to the accepted-or-not view: true means the
// notification was delivered or is still on its way, false means it was
// rejected or terminally failed.
func (o Outcome) Bool() bool {
	return o.Status == StatusDelivered || o.Status == StatusQueued
}

func delivered(id string) Outcome {
	return Outcome{Status: StatusDelivered, NotificationID: id}
}

func queued(id string) Outcome {
	return Outcome{Status: StatusQueued, NotificationID: id}
}

func failed(id, reason string) Outcome {
	return Outcome{Status: StatusFailed, NotificationID: id, Reason: reason}
}

func rejected(reason string) Outcome {
	return Outcome{Status: StatusRejected, Reason: reason}
}
