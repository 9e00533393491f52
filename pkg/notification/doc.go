// Package notification defines the value types shared by the dispatch queue
// and the services built on top of it: the Notification delivery request and
// the terminal Result recorded once delivery either succeeds or exhausts its
// retry budget.
//
// Both types use value semantics. A Notification is immutable after creation;
// the queue copies it on acceptance, so callers can reuse or discard their
// instance freely. Priorities are derived from the Kind with a total mapping
// (critical > alert > warning > info) and only influence ordering within a
// batch submission.
//
// # Usage
//
//	n, err := notification.New("user-42", "disk usage above 90%", notification.KindAlert)
//	if err != nil {
//	    // one or more fields failed validation; errors.Is(err,
//	    // notification.ErrInvalidNotification) is true
//	}
package notification
