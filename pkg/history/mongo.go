package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultCollection = "notification_history"

// Mongo implements Storage on a MongoDB collection. Records are stored one
// document each with the record ID as the document ID.
type Mongo struct {
	col *mongo.Collection
}

type mongoOptions struct {
	collection string
}

// MongoOption configures a Mongo storage.
type MongoOption func(*mongoOptions)

// WithCollection overrides the collection name. Empty values are ignored.
func WithCollection(name string) MongoOption {
	return func(o *mongoOptions) {
		if name != "" {
			o.collection = name
		}
	}
}

// NewMongo creates a MongoDB-backed history storage and ensures its indexes.
// The database handle is shared, not owned.
func NewMongo(ctx context.Context, db *mongo.Database, opts ...MongoOption) (*Mongo, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: mongo database is required", ErrNilClient)
	}

	cfg := mongoOptions{collection: defaultCollection}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Mongo{col: db.Collection(cfg.collection)}
	if err := m.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "delivered_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
		{Keys: bson.D{{Key: "delivered_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create history indexes: %w", err)
	}
	return nil
}

func (m *Mongo) Create(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: record ID is required", ErrInvalidRecord)
	}
	if rec.UserID == "" {
		return fmt.Errorf("%w: user ID is required", ErrInvalidRecord)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := m.col.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	return nil
}

func (m *Mongo) Get(ctx context.Context, userID, recordID string) (*Record, error) {
	var rec Record
	err := m.col.FindOne(ctx, bson.M{"_id": recordID, "user_id": userID}).Decode(&rec)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrRecordNotFound
	case err != nil:
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &rec, nil
}

func (m *Mongo) List(ctx context.Context, userID string, opts ListOptions) ([]Record, error) {
	filter := bson.M{"user_id": userID}
	if opts.OnlyUnread {
		filter["read"] = false
	}
	if len(opts.Kinds) > 0 {
		filter["kind"] = bson.M{"$in": opts.Kinds}
	}
	if opts.Since != nil {
		filter["delivered_at"] = bson.M{"$gte": *opts.Since}
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "delivered_at", Value: -1}})
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := m.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	records := make([]Record, 0)
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

func (m *Mongo) MarkRead(ctx context.Context, userID string, recordIDs ...string) error {
	if len(recordIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	_, err := m.col.UpdateMany(ctx,
		bson.M{"user_id": userID, "_id": bson.M{"$in": recordIDs}, "read": false},
		bson.M{"$set": bson.M{"read": true, "read_at": now}},
	)
	if err != nil {
		return fmt.Errorf("mark records read: %w", err)
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, userID string, recordIDs ...string) error {
	if len(recordIDs) == 0 {
		return nil
	}

	_, err := m.col.DeleteMany(ctx, bson.M{"user_id": userID, "_id": bson.M{"$in": recordIDs}})
	if err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

func (m *Mongo) CountUnread(ctx context.Context, userID string) (int, error) {
	n, err := m.col.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return int(n), nil
}

func (m *Mongo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := m.col.DeleteMany(ctx, bson.M{"delivered_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("purge records: %w", err)
	}
	return int(res.DeletedCount), nil
}
