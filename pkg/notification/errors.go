package notification

import "errors"

// Validation errors
var (
	// ErrInvalidNotification is joined with the field-level errors below when
	// validation fails; callers branch on it with errors.Is.
	ErrInvalidNotification = errors.New("invalid notification")

	// ErrEmptyID is returned when the notification identity is empty
	ErrEmptyID = errors.New("notification id cannot be empty")

	// ErrEmptyUserID is returned when the recipient identifier is empty
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrEmptyMessage is returned when the message body is empty
	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrInvalidKind is returned when the kind is not one of the defined values
	ErrInvalidKind = errors.New("kind must be one of info, warning, alert, critical")
)
