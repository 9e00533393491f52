// Package pg provides PostgreSQL connection helpers built on pgx/v5.
//
// It covers the plumbing every Postgres-backed component needs: a pooled
// connection with startup retries, goose migrations served from an embedded
// filesystem, and a healthcheck closure for readiness probes.
//
// Usage:
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
// Packages that own a schema embed their migrations and apply them through
// Migrate:
//
//	//go:embed migrations/*.sql
//	var migrationsFS embed.FS
//
//	if err := pg.Migrate(ctx, pool, migrationsFS, "migrations", slog.Default()); err != nil {
//		return err
//	}
package pg
