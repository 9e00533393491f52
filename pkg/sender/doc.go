// Package sender provides channel-agnostic message delivery with built-in
// support for Postmark email, Telegram bots, a multi-channel fan-out, and a
// local file spool for development.
//
// # Architecture
//
// The package is built around the Sender interface, so delivery channels can
// be swapped or combined without changing application code. Available
// implementations:
//   - Postmark for transactional email with open and link tracking
//   - Telegram for bot messages addressed by numeric chat ID
//   - Multi for fanning one message out to several channels
//   - Dev for local development (spools messages to disk)
//
// All implementations validate the message before transmitting and report
// failures through shared sentinel errors.
//
// # Usage
//
// Sending email through Postmark:
//
//	var cfg sender.PostmarkConfig
//	if err := config.Load(&cfg); err != nil {
//	    // Handle configuration error
//	}
//
//	snd, err := sender.NewPostmark(cfg)
//	if err != nil {
//	    // Handle configuration error
//	}
//
//	err = snd.Send(ctx, sender.Message{
//	    To:      "user@example.com",
//	    Subject: "Deploy finished",
//	    Body:    "Your deploy completed without errors.",
//	    Tag:     "deploy", // optional, for analytics
//	})
//
// Combining channels so a message survives a single-channel outage:
//
//	multi := sender.NewMulti([]sender.Sender{postmarkSender, telegramSender})
//	err := multi.Send(ctx, msg)
//	// err is non-nil only when every channel failed
//
// Development mode spools messages locally:
//
//	dev := sender.NewDev(sender.DevConfig{Dir: "./tmp/outbox"})
//	err := dev.Send(ctx, msg)
//	// Creates timestamped HTML and JSON files in ./tmp/outbox/
//
// # Batch Delivery
//
// SendBatch returns one error slot per message, positionally aligned with the
// input. Channels with a native batch endpoint (Postmark) use it; the rest
// send sequentially. A nil slot means that message was delivered.
//
// # Error Handling
//
// The package provides sentinel errors for common failure scenarios:
//   - ErrInvalidConfig: sender configuration validation failed
//   - ErrInvalidMessage: message validation failed
//   - ErrSendFailed: the channel refused or failed to deliver
//
// All errors can be checked using errors.Is() for programmatic handling:
//
//	if errors.Is(err, sender.ErrInvalidMessage) {
//	    // The message can never succeed; do not retry.
//	}
package sender
