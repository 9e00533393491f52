package sender

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Telegram delivers messages through a Telegram bot. The recipient address is
// the numeric chat ID as a string, matching how chat IDs are stored in user
// preferences.
type Telegram struct {
	bot *tele.Bot
}

// NewTelegram creates a Telegram-backed sender. The bot is send-only, so no
// poller is attached. With cfg.Offline set the Telegram API is never
// contacted, which keeps construction testable without a live token.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("%w: Token is required", ErrInvalidConfig)
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		Offline: cfg.Offline,
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return &Telegram{bot: bot}, nil
}

// Send implements Sender. The subject becomes the first line of the message
// so channel-agnostic callers do not lose it.
func (t *Telegram) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(msg.To, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: To must be a numeric chat ID", ErrInvalidMessage)
	}

	text := msg.Body
	if msg.Subject != "" {
		text = msg.Subject + "\n\n" + msg.Body
	}
	if _, err := t.bot.Send(&tele.Chat{ID: chatID}, text); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

// SendBatch implements Sender. Telegram has no batch endpoint, so messages go
// out one at a time and each keeps its own error slot.
func (t *Telegram) SendBatch(ctx context.Context, msgs []Message) []error {
	errs := make([]error, len(msgs))
	for i, msg := range msgs {
		if err := ctx.Err(); err != nil {
			errs[i] = errors.Join(ErrSendFailed, err)
			continue
		}
		errs[i] = t.Send(ctx, msg)
	}
	return errs
}
