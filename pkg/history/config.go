package history

import "time"

// RetentionConfig holds retention sweep settings.
type RetentionConfig struct {
	Schedule string        `env:"HISTORY_RETENTION_SCHEDULE" envDefault:"0 3 * * *"` // Schedule is a cron expression; an optional seconds field and descriptors like "@daily" are accepted.
	MaxAge   time.Duration `env:"HISTORY_RETENTION_MAX_AGE" envDefault:"720h"`       // MaxAge is how long delivered records are kept.
}
