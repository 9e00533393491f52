// Package mongo provides helpers for connecting to a MongoDB server.
//
// It wraps the official driver with a retrying constructor, env-driven
// configuration, and a healthcheck closure for liveness and readiness probes.
//
// Usage:
//
//	var cfg mongo.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, "notifications")
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(ctx)
package mongo
