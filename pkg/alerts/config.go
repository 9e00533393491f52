package alerts

// Config holds the alert service configuration.
type Config struct {
	// BulkBatchSize is how many users a bulk send works on concurrently.
	BulkBatchSize int `env:"ALERTS_BULK_BATCH_SIZE" envDefault:"10"`
	// RateLimit is the per-user sustained send rate in events per second.
	// Zero disables rate limiting.
	RateLimit float64 `env:"ALERTS_RATE_LIMIT" envDefault:"0"`
	// RateBurst is the per-user burst allowance when rate limiting is on.
	RateBurst int `env:"ALERTS_RATE_BURST" envDefault:"1"`
}
