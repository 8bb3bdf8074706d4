package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
)

// HistoryRepository persists diagnosis results per user. The full result
// payload is kept as JSONB so listing never re-runs the pipeline.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Ping probes the shared pool for the health endpoint.
func (r *HistoryRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS prediction_history (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	plant_type TEXT,
	result JSONB NOT NULL,
	image_filename TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prediction_history_user ON prediction_history(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS users (
	uid TEXT PRIMARY KEY,
	email TEXT NOT NULL,
	name TEXT,
	phone TEXT,
	location TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *HistoryRepository) Insert(ctx context.Context, record *domain.HistoryRecord) error {
	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO prediction_history (id, user_id, plant_type, result, image_filename, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, record.ID, record.UserID, record.PlantType, resultJSON, record.ImageFilename, record.CreatedAt)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "insert history record", err)
	}
	return nil
}

func (r *HistoryRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, plant_type, result, image_filename, created_at
FROM prediction_history
WHERE user_id = $1
ORDER BY created_at DESC
OFFSET $2 LIMIT $3
`, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]domain.HistoryRecord, 0)
	for rows.Next() {
		var record domain.HistoryRecord
		var resultRaw []byte
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.PlantType,
			&resultRaw,
			&record.ImageFilename,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		if err := json.Unmarshal(resultRaw, &record.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}
