// Package redis provides helpers for connecting to a Redis server.
//
// It wraps the go-redis client with a Connect function that retries until the
// server is ready, env-driven configuration, and a healthcheck closure for
// liveness and readiness probes.
//
// Usage:
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	checker := redis.Healthcheck(client)
//	if err := checker(ctx); err != nil {
//		// redis is not healthy
//	}
//
// Sentinel errors wrap the underlying go-redis errors with errors.Join so
// callers can match them with errors.Is.
package redis
