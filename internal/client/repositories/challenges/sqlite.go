package challenges

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
	"github.com/Samuel-SouzaZz/devquest/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, ch *models.Challenge) error {
	return upsert(ctx, r.db, ch)
}

func upsert(ctx context.Context, q dbx.DBTX, ch *models.Challenge) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO challenges (id, title, description, difficulty, language, xp, group_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			difficulty = excluded.difficulty,
			language = excluded.language,
			xp = excluded.xp,
			group_id = excluded.group_id,
			created_at = excluded.created_at
	`, ch.ID, ch.Title, ch.Description, string(ch.Difficulty), ch.Language, ch.XP, ch.GroupID, ch.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert challenge: %w", err)
	}
	return nil
}

// ReplaceAll swaps the cache contents inside one transaction, so a reader
// never observes the cache half-replaced.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, list []models.Challenge) error {
	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM challenges`); err != nil {
			return fmt.Errorf("failed to clear challenges: %w", err)
		}
		for i := range list {
			if err := upsert(ctx, tx, &list[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Challenge, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, difficulty, language, xp, group_id, created_at
		FROM challenges ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to select challenges: %w", err)
	}
	defer rows.Close()

	var result []models.Challenge
	for rows.Next() {
		var (
			ch         models.Challenge
			difficulty string
			createdAt  int64
		)
		if err := rows.Scan(&ch.ID, &ch.Title, &ch.Description, &difficulty, &ch.Language, &ch.XP, &ch.GroupID, &createdAt); err != nil {
			return nil, err
		}
		ch.Difficulty = models.Difficulty(difficulty)
		ch.CreatedAt = time.UnixMilli(createdAt).UTC()
		result = append(result, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM challenges`)
	if err != nil {
		return fmt.Errorf("failed to clear challenges: %w", err)
	}
	return nil
}
