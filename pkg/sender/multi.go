package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/notifkit/notifkit/pkg/logger"
)

// Multi fans a message out to several channels. Delivery succeeds when at
// least one channel accepts the message; the error return is reserved for the
// case where every channel failed, so retry machinery upstream only re-fires
// when nothing got through.
type Multi struct {
	senders []Sender
	logger  *slog.Logger
}

// MultiOption configures a Multi.
type MultiOption func(*Multi)

// WithMultiLogger sets the logger used to report per-channel failures.
func WithMultiLogger(log *slog.Logger) MultiOption {
	return func(m *Multi) {
		if log != nil {
			m.logger = log
		}
	}
}

// NewMulti creates a multi-channel sender.
func NewMulti(senders []Sender, opts ...MultiOption) *Multi {
	m := &Multi{
		senders: senders,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send implements Sender. A panic in one channel is contained and treated as
// that channel's failure.
func (m *Multi) Send(ctx context.Context, msg Message) error {
	if len(m.senders) == 0 {
		return fmt.Errorf("%w: no channels configured", ErrSendFailed)
	}

	var failures []error
	delivered := false
	for i, s := range m.senders {
		err := m.trySend(ctx, s, msg)
		if err == nil {
			delivered = true
			continue
		}
		failures = append(failures, err)
		m.logger.LogAttrs(ctx, slog.LevelError, "channel delivery failed",
			slog.Int("sender_index", i),
			logger.Channel(fmt.Sprintf("%T", s)),
			logger.Error(err),
		)
	}
	if delivered {
		return nil
	}
	return errors.Join(failures...)
}

// SendBatch implements Sender. Each slot succeeds when any channel accepted
// that message.
func (m *Multi) SendBatch(ctx context.Context, msgs []Message) []error {
	errs := make([]error, len(msgs))
	if len(m.senders) == 0 {
		for i := range errs {
			errs[i] = fmt.Errorf("%w: no channels configured", ErrSendFailed)
		}
		return errs
	}

	delivered := make([]bool, len(msgs))
	failures := make([][]error, len(msgs))
	for i, s := range m.senders {
		for j, err := range m.tryBatch(ctx, s, msgs) {
			if err == nil {
				delivered[j] = true
				continue
			}
			failures[j] = append(failures[j], err)
			m.logger.LogAttrs(ctx, slog.LevelError, "channel delivery failed",
				slog.Int("sender_index", i),
				slog.Int("message_index", j),
				logger.Channel(fmt.Sprintf("%T", s)),
				logger.Error(err),
			)
		}
	}
	for j := range msgs {
		if !delivered[j] {
			errs[j] = errors.Join(failures[j]...)
		}
	}
	return errs
}

func (m *Multi) trySend(ctx context.Context, s Sender, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: channel panic: %v", ErrSendFailed, r)
		}
	}()
	return s.Send(ctx, msg)
}

func (m *Multi) tryBatch(ctx context.Context, s Sender, msgs []Message) (errs []error) {
	defer func() {
		if r := recover(); r != nil {
			errs = make([]error, len(msgs))
			for i := range errs {
				errs[i] = fmt.Errorf("%w: channel panic: %v", ErrSendFailed, r)
			}
		}
	}()
	return s.SendBatch(ctx, msgs)
}
