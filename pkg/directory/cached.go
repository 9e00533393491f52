package directory

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Option is a functional option for configuring the cached lookup
type Option func(*options)

type options struct {
	ttl    time.Duration
	negTTL time.Duration
}

// WithTTL sets how long resolved users stay cached.
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithNegativeTTL sets how long unresolved identifiers stay cached. Kept
// deliberately shorter than the positive TTL so a user created moments after
// a miss is picked up quickly.
func WithNegativeTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.negTTL = d
		}
	}
}

// WithConfig applies an environment-loaded configuration in one call.
func WithConfig(cfg CacheConfig) Option {
	return func(o *options) {
		WithTTL(cfg.TTL)(o)
		WithNegativeTTL(cfg.NegativeTTL)(o)
	}
}

// CacheConfig holds the configuration for the cached lookup
type CacheConfig struct {
	TTL         time.Duration `env:"DIRECTORY_CACHE_TTL" envDefault:"5m"`
	NegativeTTL time.Duration `env:"DIRECTORY_CACHE_NEGATIVE_TTL" envDefault:"30s"`
}

// notFound marks identifiers the underlying lookup could not resolve.
type notFound struct{}

// Cached decorates a Lookup with an expiring in-memory cache. Hits and misses
// are cached under separate TTLs; infrastructure errors are never cached.
type Cached struct {
	next   Lookup
	store  *gocache.Cache
	ttl    time.Duration
	negTTL time.Duration
}

// NewCached wraps next with a cache.
func NewCached(next Lookup, opts ...Option) (*Cached, error) {
	if next == nil {
		return nil, ErrNilLookup
	}

	options := &options{
		ttl:    5 * time.Minute,
		negTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Cached{
		next:   next,
		store:  gocache.New(options.ttl, options.ttl),
		ttl:    options.ttl,
		negTTL: options.negTTL,
	}, nil
}

// FindByID implements Lookup.
func (c *Cached) FindByID(ctx context.Context, id string) (*User, error) {
	if v, ok := c.store.Get(id); ok {
		if _, miss := v.(notFound); miss {
			return nil, ErrUserNotFound
		}
		u := v.(User).Clone()
		return &u, nil
	}

	u, err := c.next.FindByID(ctx, id)
	switch {
	case errors.Is(err, ErrUserNotFound):
		c.store.Set(id, notFound{}, c.negTTL)
		return nil, err
	case err != nil:
		return nil, err
	}

	c.store.Set(id, u.Clone(), c.ttl)
	return u, nil
}

// Invalidate drops the cache entry for id, positive or negative.
func (c *Cached) Invalidate(id string) {
	c.store.Delete(id)
}

// Clear drops every cache entry.
func (c *Cached) Clear() {
	c.store.Flush()
}
