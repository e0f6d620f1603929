// Package challenges caches challenge records fetched from the server so
// listing keeps working while disconnected.
package challenges

import (
	"context"

	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
)

type Repository interface {
	// Upsert inserts or replaces a cached challenge by id.
	Upsert(ctx context.Context, ch *models.Challenge) error

	// ReplaceAll atomically swaps the whole cache for list, so entries the
	// server no longer returns disappear locally too.
	ReplaceAll(ctx context.Context, list []models.Challenge) error

	// GetAll returns the cached challenges, newest first.
	GetAll(ctx context.Context) ([]models.Challenge, error)

	// Clear drops the whole cache.
	Clear(ctx context.Context) error
}
