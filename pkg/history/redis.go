package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "history"

// Redis implements Storage on top of a Redis instance.
//
// Layout per user: one JSON value per record, a sorted-set index scored by
// delivery time, and a set of unread record IDs. A top-level set of user IDs
// lets retention sweeps visit every user without a SCAN.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a Redis storage.
type RedisOption func(*Redis)

// WithKeyPrefix overrides the key namespace. Empty values are ignored.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// NewRedis creates a Redis-backed history storage. The client is shared, not
// owned; closing it is the caller's responsibility.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client is required", ErrNilClient)
	}

	r := &Redis{
		client: client,
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Redis) recordKey(userID, recordID string) string {
	return r.prefix + ":rec:" + userID + ":" + recordID
}

func (r *Redis) indexKey(userID string) string  { return r.prefix + ":idx:" + userID }
func (r *Redis) unreadKey(userID string) string { return r.prefix + ":unread:" + userID }
func (r *Redis) usersKey() string               { return r.prefix + ":users" }

func (r *Redis) Create(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: record ID is required", ErrInvalidRecord)
	}
	if rec.UserID == "" {
		return fmt.Errorf("%w: user ID is required", ErrInvalidRecord)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.recordKey(rec.UserID, rec.ID), payload, 0)
		pipe.ZAdd(ctx, r.indexKey(rec.UserID), redis.Z{
			Score:  float64(rec.DeliveredAt.UnixMilli()),
			Member: rec.ID,
		})
		if rec.Read {
			pipe.SRem(ctx, r.unreadKey(rec.UserID), rec.ID)
		} else {
			pipe.SAdd(ctx, r.unreadKey(rec.UserID), rec.ID)
		}
		pipe.SAdd(ctx, r.usersKey(), rec.UserID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, userID, recordID string) (*Record, error) {
	payload, err := r.client.Get(ctx, r.recordKey(userID, recordID)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrRecordNotFound
	case err != nil:
		return nil, fmt.Errorf("get record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

func (r *Redis) List(ctx context.Context, userID string, opts ListOptions) ([]Record, error) {
	ids, err := r.client.ZRevRange(ctx, r.indexKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list record index: %w", err)
	}
	if len(ids) == 0 {
		return []Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.recordKey(userID, id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	filtered := make([]Record, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a value, e.g. racing a delete.
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		if opts.matches(rec) {
			filtered = append(filtered, rec)
		}
	}
	return paginate(filtered, opts.Limit, opts.Offset), nil
}

func (r *Redis) MarkRead(ctx context.Context, userID string, recordIDs ...string) error {
	for _, id := range recordIDs {
		rec, err := r.Get(ctx, userID, id)
		if errors.Is(err, ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if rec.Read {
			continue
		}
		rec.MarkAsRead()

		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.recordKey(userID, id), payload, 0)
			pipe.SRem(ctx, r.unreadKey(userID), id)
			return nil
		})
		if err != nil {
			return fmt.Errorf("mark record read: %w", err)
		}
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, userID string, recordIDs ...string) error {
	if len(recordIDs) == 0 {
		return nil
	}

	keys := make([]string, len(recordIDs))
	members := make([]any, len(recordIDs))
	for i, id := range recordIDs {
		keys[i] = r.recordKey(userID, id)
		members[i] = id
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, r.indexKey(userID), members...)
		pipe.SRem(ctx, r.unreadKey(userID), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return r.dropUserIfEmpty(ctx, userID)
}

func (r *Redis) CountUnread(ctx context.Context, userID string) (int, error) {
	n, err := r.client.SCard(ctx, r.unreadKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return int(n), nil
}

func (r *Redis) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	users, err := r.client.SMembers(ctx, r.usersKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	// Exclusive bound: scores are delivery times in ms, purge strictly older.
	maxScore := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)

	purged := 0
	for _, userID := range users {
		ids, err := r.client.ZRangeByScore(ctx, r.indexKey(userID), &redis.ZRangeBy{
			Min: "-inf",
			Max: maxScore,
		}).Result()
		if err != nil {
			return purged, fmt.Errorf("scan user %s: %w", userID, err)
		}
		if len(ids) == 0 {
			continue
		}
		if err := r.Delete(ctx, userID, ids...); err != nil {
			return purged, err
		}
		purged += len(ids)
	}
	return purged, nil
}

// dropUserIfEmpty removes a user's index keys and the user-set entry once the
// last record is gone.
func (r *Redis) dropUserIfEmpty(ctx context.Context, userID string) error {
	n, err := r.client.ZCard(ctx, r.indexKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("check record index: %w", err)
	}
	if n > 0 {
		return nil
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.indexKey(userID), r.unreadKey(userID))
		pipe.SRem(ctx, r.usersKey(), userID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("drop user index: %w", err)
	}
	return nil
}
