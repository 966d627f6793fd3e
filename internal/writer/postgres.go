package writer

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/nft-pricewatch/internal/model"
)

// execer is the subset of *pgxpool.Pool used by PostgresSink.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const upsertSnapshotSQL = `
	INSERT INTO latest_snapshot (collection, snapshot, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (collection) DO UPDATE
	SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at
`

// PostgresSink keeps the latest snapshot of a collection in one row.
type PostgresSink struct {
	db         execer
	collection string
}

// NewPostgresSink creates a PostgresSink. db is usually a *pgxpool.Pool.
func NewPostgresSink(db execer, collection string) *PostgresSink {
	return &PostgresSink{db: db, collection: collection}
}

// Write upserts snap as JSONB.
func (s *PostgresSink) Write(ctx context.Context, snap model.Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	updatedAt := snap.General.LastUpdate
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	if _, err := s.db.Exec(ctx, upsertSnapshotSQL, s.collection, data, updatedAt); err != nil {
		return fmt.Errorf("upsert latest_snapshot: %w", err)
	}
	return nil
}
