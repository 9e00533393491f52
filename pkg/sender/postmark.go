package sender

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// Postmark delivers messages as transactional email through the Postmark API.
type Postmark struct {
	client *postmark.Client
	cfg    PostmarkConfig
}

// NewPostmark creates a Postmark-backed sender. All tokens and addresses are
// required here even though the config leaves them optional, so a
// misconfigured production wiring fails at startup instead of on first send.
func NewPostmark(cfg PostmarkConfig) (*Postmark, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: ServerToken is required", ErrInvalidConfig)
	}
	if cfg.AccountToken == "" {
		return nil, fmt.Errorf("%w: AccountToken is required", ErrInvalidConfig)
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("%w: FromEmail is required", ErrInvalidConfig)
	}
	if !ValidEmail(cfg.FromEmail) {
		return nil, fmt.Errorf("%w: FromEmail must be a valid email address", ErrInvalidConfig)
	}
	if cfg.ReplyToEmail == "" {
		cfg.ReplyToEmail = cfg.FromEmail
	}
	if !ValidEmail(cfg.ReplyToEmail) {
		return nil, fmt.Errorf("%w: ReplyToEmail must be a valid email address", ErrInvalidConfig)
	}

	return &Postmark{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		cfg:    cfg,
	}, nil
}

// MustPostmark creates a Postmark sender that panics on invalid config.
func MustPostmark(cfg PostmarkConfig) *Postmark {
	s, err := NewPostmark(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

// Send implements Sender. Open tracking and HTML-only link tracking are
// enabled; plain-text links stay untouched to avoid mangling copied URLs.
func (p *Postmark) Send(ctx context.Context, msg Message) error {
	if err := p.validateMessage(msg); err != nil {
		return err
	}

	resp, err := p.client.SendEmail(ctx, p.email(msg))
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrSendFailed,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}

// SendBatch implements Sender using Postmark's batch endpoint. Messages that
// fail local validation are reported in their slot without being transmitted;
// a transport-level failure marks every transmitted message as failed.
func (p *Postmark) SendBatch(ctx context.Context, msgs []Message) []error {
	errs := make([]error, len(msgs))

	emails := make([]postmark.Email, 0, len(msgs))
	positions := make([]int, 0, len(msgs))
	for i, msg := range msgs {
		if err := p.validateMessage(msg); err != nil {
			errs[i] = err
			continue
		}
		emails = append(emails, p.email(msg))
		positions = append(positions, i)
	}
	if len(emails) == 0 {
		return errs
	}

	responses, err := p.client.SendEmailBatch(ctx, emails)
	if err != nil {
		for _, pos := range positions {
			errs[pos] = errors.Join(ErrSendFailed, err)
		}
		return errs
	}
	for j, resp := range responses {
		if j >= len(positions) {
			break
		}
		if resp.ErrorCode > 0 {
			errs[positions[j]] = errors.Join(
				ErrSendFailed,
				fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
			)
		}
	}
	return errs
}

func (p *Postmark) validateMessage(msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if !ValidEmail(msg.To) {
		return fmt.Errorf("%w: To must be a valid email address", ErrInvalidMessage)
	}
	return nil
}

func (p *Postmark) email(msg Message) postmark.Email {
	return postmark.Email{
		From:       p.cfg.FromEmail,
		ReplyTo:    p.cfg.ReplyToEmail,
		To:         msg.To,
		Subject:    msg.Subject,
		Tag:        msg.Tag,
		HTMLBody:   renderHTML(msg.Subject, msg.Body),
		TextBody:   msg.Body,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	}
}
