package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"malim/internal/domain"
)

const snapshotKey = "snapshot"

// SnapshotRepo stores the whole snapshot as one JSON payload row.
type SnapshotRepo struct {
	DB *sql.DB
	SQ sq.StatementBuilderType
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{DB: db, SQ: sq.StatementBuilder}
}

func (r *SnapshotRepo) Load(ctx context.Context) (*domain.Snapshot, error) {
	sqlStr, args, _ := r.SQ.Select("payload").From("snapshots").Where(sq.Eq{"key": snapshotKey}).ToSql()
	var payload string
	err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if payload == "" {
		return nil, nil
	}
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func (r *SnapshotRepo) Save(ctx context.Context, snap domain.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	q := r.SQ.Insert("snapshots").Columns("key", "payload", "updated_at").
		Values(snapshotKey, string(b), now).
		Suffix("ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at")
	sqlStr, args, _ := q.ToSql()
	if _, err := r.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
