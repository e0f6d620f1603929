package pending

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:pendingrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE pending_operations (
  id         TEXT PRIMARY KEY,
  kind       TEXT NOT NULL,
  payload    TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  synced     INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)
	return db
}

func op(id string, at time.Time) *models.PendingOperation {
	return &models.PendingOperation{
		ID:   id,
		Kind: models.OpCreateChallenge,
		Payload: models.ChallengePayload{
			Title:      "Two Sum",
			Difficulty: models.DifficultyEasy,
			Language:   "go",
			XP:         100,
		},
		CreatedAt: at,
	}
}

func TestInsertGetAll_RoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	now := time.Now().Truncate(time.Millisecond).UTC()
	require.NoError(t, repo.Insert(ctx, op("offline_1_a", now)))
	require.NoError(t, repo.Insert(ctx, op("offline_2_b", now.Add(time.Second))))

	got, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "offline_1_a", got[0].ID)
	require.Equal(t, "offline_2_b", got[1].ID)
	require.Equal(t, "Two Sum", got[0].Payload.Title)
	require.Equal(t, models.OpCreateChallenge, got[0].Kind)
	require.False(t, got[0].Synced)
	require.Equal(t, now, got[0].CreatedAt)
}

func TestInsert_DuplicateIDIsNoop(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Insert(ctx, op("dup", now)))
	require.NoError(t, repo.Insert(ctx, op("dup", now)))

	got, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestMarkSynced(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, op("x", time.Now().UTC())))
	require.NoError(t, repo.MarkSynced(ctx, "x"))

	got, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.True(t, got[0].Synced)
}

func TestDelete_Idempotent(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, op("x", time.Now().UTC())))
	require.NoError(t, repo.Delete(ctx, "x"))
	require.NoError(t, repo.Delete(ctx, "x"))

	got, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}
