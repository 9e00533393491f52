package sender

import "errors"

var (
	ErrInvalidMessage = errors.New("sender.errors.invalid_message")
	ErrInvalidConfig  = errors.New("sender.errors.invalid_config")
	ErrSendFailed     = errors.New("sender.errors.send_failed")
)
