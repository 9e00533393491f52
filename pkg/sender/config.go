package sender

// PostmarkConfig holds the Postmark channel configuration.
// Tokens are optional at parse time to support development environments where
// the dev sender is wired instead; NewPostmark enforces their presence.
type PostmarkConfig struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	FromEmail    string `env:"SENDER_FROM_EMAIL"`
	ReplyToEmail string `env:"SENDER_REPLY_TO_EMAIL"`
}

// TelegramConfig holds the Telegram channel configuration.
type TelegramConfig struct {
	Token string `env:"TELEGRAM_BOT_TOKEN"`
	// Offline skips the token verification round-trip at construction.
	// Meant for tests; never enable it in a real deployment.
	Offline bool `env:"TELEGRAM_OFFLINE" envDefault:"false"`
}

// DevConfig holds the development file sender configuration.
type DevConfig struct {
	Dir string `env:"SENDER_DEV_DIR" envDefault:"./tmp/outbox"`
}
