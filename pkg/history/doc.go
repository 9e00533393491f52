// Package history persists per-user notification delivery records.
//
// Every terminal dispatch outcome can be stored as a Record: what was sent,
// to whom, whether it succeeded, and when. Records carry a read flag so
// product surfaces can build inbox-style views with unread counts.
//
// # Architecture
//
// The package is organized around the Storage interface with four
// implementations:
//
//   - Memory: process-local, bounded per user, for embedding and tests
//   - Redis: JSON values with sorted-set indexes, for shared low-latency access
//   - Mongo: one document per record in a single collection
//   - Postgres: one row per record, schema applied from embedded migrations
//
// Record identity is the notification identity, so history lookups join
// directly against dispatch results. Storing the same identity twice
// overwrites the earlier record, which makes writes idempotent under
// redelivery.
//
// Retention runs as a cron-scheduled sweeper that removes records older than
// a configured age across all users, regardless of backend.
//
// # Usage
//
//	store := history.NewMemory()
//
//	rec := history.FromResult(n, res)
//	if err := store.Create(ctx, rec); err != nil {
//		return err
//	}
//
//	recent, err := store.List(ctx, userID, history.ListOptions{Limit: 20})
//	if err != nil {
//		return err
//	}
//
//	unread, err := store.CountUnread(ctx, userID)
//	if err != nil {
//		return err
//	}
//
// Backed by a shared store instead of process memory:
//
//	client, err := redis.Connect(ctx, redisCfg) // pkg/redis
//	if err != nil {
//		return err
//	}
//	store, err := history.NewRedis(client)
//	if err != nil {
//		return err
//	}
//
// Mongo and Postgres backends wire the same way through pkg/mongo and pkg/pg.
//
// Scheduled cleanup:
//
//	ret, err := history.NewRetention(store, history.RetentionConfig{
//		Schedule: "0 3 * * *",
//		MaxAge:   30 * 24 * time.Hour,
//	})
//	if err != nil {
//		return err
//	}
//	ret.Start()
//	defer ret.Stop()
//
// # Error Handling
//
// Lookups for missing records return ErrRecordNotFound. Writes with a missing
// record or user ID return ErrInvalidRecord. Backend constructors return
// ErrNilClient when handed a nil client and ErrInvalidConfig for bad
// settings. All sentinels are matchable with errors.Is.
package history
