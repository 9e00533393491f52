package sender

import (
	"context"
	"fmt"
	"regexp"
)

// Message is one outbound notification on a concrete channel. To is
// channel-specific: an email address for mail senders, a chat identifier for
// messengers.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Tag     string `json:"tag,omitempty"` // Optional, used for provider-side analytics
}

// Validate checks the fields every channel requires.
func (m Message) Validate() error {
	if m.To == "" {
		return fmt.Errorf("%w: To is required", ErrInvalidMessage)
	}
	if m.Body == "" {
		return fmt.Errorf("%w: Body is required", ErrInvalidMessage)
	}
	return nil
}

// Sender delivers messages on one channel. A non-nil error from Send marks
// the attempt as retryable; it is never treated as fatal by callers.
type Sender interface {
	Send(ctx context.Context, msg Message) error

	// SendBatch delivers each message best-effort and reports per-message
	// outcomes aligned by index: errs[i] is nil exactly when msgs[i] went out.
	SendBatch(ctx context.Context, msgs []Message) []error
}

// emailRegex intentionally accepts a practical subset of RFC 5322; it exists
// to catch obvious typos before a provider round-trip, not to be the arbiter
// of address validity.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether s looks like a deliverable email address.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}
