package securestore

import (
	"context"

	"github.com/Samuel-SouzaZz/devquest/internal/client/repositories/metadata"
)

// SQLiteStorage stores secrets as plain rows in the metadata table. It is
// the fallback for platforms without a secure backend; key names are shared
// with FileStorage so switching implementations keeps data reachable.
type SQLiteStorage struct {
	md metadata.Repository
}

func NewSQLiteStorage(md metadata.Repository) *SQLiteStorage {
	return &SQLiteStorage{md: md}
}

func (s *SQLiteStorage) Get(ctx context.Context, key string) ([]byte, error) {
	return s.md.Get(ctx, key)
}

func (s *SQLiteStorage) Set(ctx context.Context, key string, value []byte) error {
	return s.md.Set(ctx, key, value)
}

func (s *SQLiteStorage) Delete(ctx context.Context, key string) error {
	return s.md.Delete(ctx, key)
}
