package dispatch

import "time"

// Config holds the configuration for the dispatch queue
type Config struct {
	MaxRetries      int           `env:"DISPATCH_MAX_RETRIES" envDefault:"3"`
	ResultCacheSize int           `env:"DISPATCH_RESULT_CACHE_SIZE" envDefault:"1000"`
	ResultTTL       time.Duration `env:"DISPATCH_RESULT_TTL" envDefault:"10m"`
	// SweepInterval defaults to ResultTTL/4 when zero.
	SweepInterval time.Duration `env:"DISPATCH_SWEEP_INTERVAL" envDefault:"0s"`
}
