package securestore

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/Samuel-SouzaZz/devquest/internal/client/repositories/metadata"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestSQLiteStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)

	return NewSQLiteStorage(metadata.NewSQLiteRepository(db))
}

func TestSQLiteStorage_SetGetDelete(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()

	got, err := s.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, s.Set(ctx, KeyAccessToken, []byte("token")))
	got, err = s.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, []byte("token"), got)

	require.NoError(t, s.Delete(ctx, KeyAccessToken))
	got, err = s.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLiteStorage_KeysAreIndependent(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAccessToken, []byte("acc")))
	require.NoError(t, s.Set(ctx, KeyRefreshToken, []byte("ref")))
	require.NoError(t, s.Delete(ctx, KeyAccessToken))

	got, err := s.Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	require.Equal(t, []byte("ref"), got)
}
