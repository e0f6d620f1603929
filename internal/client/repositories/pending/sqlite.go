package pending

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
	"github.com/Samuel-SouzaZz/devquest/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, op *models.PendingOperation) error {
	payload, err := json.Marshal(op.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pending_operations (id, kind, payload, created_at, synced)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, op.ID, string(op.Kind), string(payload), op.CreatedAt.UnixMilli(), boolToInt(op.Synced))
	if err != nil {
		return fmt.Errorf("failed to insert pending operation: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_operations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending operation: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE pending_operations SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark pending operation synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.PendingOperation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, payload, created_at, synced
		FROM pending_operations ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending operations: %w", err)
	}
	defer rows.Close()

	var result []models.PendingOperation
	for rows.Next() {
		var (
			op        models.PendingOperation
			kind      string
			payload   string
			createdAt int64
			synced    int
		)
		if err := rows.Scan(&op.ID, &kind, &payload, &createdAt, &synced); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &op.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		op.Kind = models.OpKind(kind)
		op.CreatedAt = time.UnixMilli(createdAt).UTC()
		op.Synced = synced != 0
		result = append(result, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
