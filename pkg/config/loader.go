package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// Validator is implemented by config structs that carry cross-field rules
// beyond what `env` tags can express. Load calls it after parsing.
type Validator interface {
	Validate() error
}

// Load parses environment variables into cfg based on `env` struct tags.
// A .env file in the working directory is read once per process before the
// first parse; a missing file is not an error. If cfg implements Validator,
// its Validate method runs after parsing.
//
// Example:
//
//	type RedisConfig struct {
//	    URL         string        `env:"REDIS_URL,required"`
//	    DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// The .env file is optional; real environments set variables directly.
		_ = godotenv.Load()
	})

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	if v, ok := any(cfg).(Validator); ok {
		if err := v.Validate(); err != nil {
			return errors.Join(ErrInvalidConfig, err)
		}
	}
	return nil
}

// MustLoad works like Load but panics on failure. Intended for process wiring
// where a missing required variable should stop startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
