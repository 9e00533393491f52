package history

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifkit/notifkit/pkg/notification"
	"github.com/notifkit/notifkit/pkg/pg"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres implements Storage on a PostgreSQL database via pgx. The schema
// ships with the package and is applied on construction unless disabled.
type Postgres struct {
	pool *pgxpool.Pool
}

type postgresOptions struct {
	logger  *slog.Logger
	migrate bool
}

// PostgresOption configures a Postgres storage.
type PostgresOption func(*postgresOptions)

// WithPostgresLogger sets the logger used during schema migration. Nil values
// are ignored.
func WithPostgresLogger(log *slog.Logger) PostgresOption {
	return func(o *postgresOptions) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithoutAutoMigrate skips applying the embedded migrations on construction.
// Use it when the host runs migrations itself during deployment.
func WithoutAutoMigrate() PostgresOption {
	return func(o *postgresOptions) {
		o.migrate = false
	}
}

// NewPostgres creates a PostgreSQL-backed history storage. The pool is
// shared, not owned; closing it is the caller's responsibility.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, opts ...PostgresOption) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("%w: connection pool is required", ErrNilClient)
	}

	cfg := postgresOptions{
		logger:  slog.Default(),
		migrate: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.migrate {
		if err := pg.Migrate(ctx, pool, migrationsFS, "migrations", cfg.logger); err != nil {
			return nil, err
		}
	}
	return &Postgres{pool: pool}, nil
}

const recordColumns = "id, user_id, message, kind, priority, success, error, read, read_at, delivered_at, created_at"

func (p *Postgres) Create(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: record ID is required", ErrInvalidRecord)
	}
	if rec.UserID == "" {
		return fmt.Errorf("%w: user ID is required", ErrInvalidRecord)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO notification_history (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			message = EXCLUDED.message,
			kind = EXCLUDED.kind,
			priority = EXCLUDED.priority,
			success = EXCLUDED.success,
			error = EXCLUDED.error,
			read = EXCLUDED.read,
			read_at = EXCLUDED.read_at,
			delivered_at = EXCLUDED.delivered_at,
			created_at = EXCLUDED.created_at`

	_, err := p.pool.Exec(ctx, query,
		rec.ID, rec.UserID, rec.Message, string(rec.Kind), rec.Priority,
		rec.Success, nullString(rec.Error), rec.Read, rec.ReadAt,
		rec.DeliveredAt, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, userID, recordID string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM notification_history WHERE user_id = $1 AND id = $2`

	rec, err := scanRecord(p.pool.QueryRow(ctx, query, userID, recordID))
	switch {
	case pg.IsNotFoundError(err):
		return nil, ErrRecordNotFound
	case err != nil:
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

func (p *Postgres) List(ctx context.Context, userID string, opts ListOptions) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM notification_history WHERE user_id = $1`
	args := []any{userID}

	if opts.OnlyUnread {
		query += " AND NOT read"
	}
	if len(opts.Kinds) > 0 {
		kinds := make([]string, len(opts.Kinds))
		for i, k := range opts.Kinds {
			kinds[i] = string(k)
		}
		args = append(args, kinds)
		query += fmt.Sprintf(" AND kind = ANY($%d)", len(args))
	}
	if opts.Since != nil {
		args = append(args, *opts.Since)
		query += fmt.Sprintf(" AND delivered_at >= $%d", len(args))
	}

	query += " ORDER BY delivered_at DESC, id"

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (p *Postgres) MarkRead(ctx context.Context, userID string, recordIDs ...string) error {
	if len(recordIDs) == 0 {
		return nil
	}

	query := `UPDATE notification_history
		SET read = TRUE, read_at = $3
		WHERE user_id = $1 AND id = ANY($2) AND NOT read`

	if _, err := p.pool.Exec(ctx, query, userID, recordIDs, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark records read: %w", err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, userID string, recordIDs ...string) error {
	if len(recordIDs) == 0 {
		return nil
	}

	query := `DELETE FROM notification_history WHERE user_id = $1 AND id = ANY($2)`
	if _, err := p.pool.Exec(ctx, query, userID, recordIDs); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

func (p *Postgres) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM notification_history WHERE user_id = $1 AND NOT read`

	var n int64
	if err := p.pool.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return int(n), nil
}

func (p *Postgres) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	query := `DELETE FROM notification_history WHERE delivered_at < $1`

	tag, err := p.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec    Record
		kind   string
		errMsg *string
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Message, &kind, &rec.Priority,
		&rec.Success, &errMsg, &rec.Read, &rec.ReadAt,
		&rec.DeliveredAt, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Kind = notification.Kind(kind)
	if errMsg != nil {
		rec.Error = *errMsg
	}
	return &rec, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
