// Package pending implements the structured mirror of the offline write
// queue. The mirror is a best-effort secondary index for local queries; the
// serialized list in the metadata store stays authoritative, so mirror
// failures are never surfaced to callers of the queue.
package pending

import (
	"context"

	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
)

// Repository stores pending operations as queryable rows.
type Repository interface {
	// Insert adds a mirror row for the operation, keyed by the same id the
	// key/value layer uses.
	Insert(ctx context.Context, op *models.PendingOperation) error

	// Delete removes the row; deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// MarkSynced flips the synced flag in place.
	MarkSynced(ctx context.Context, id string) error

	// GetAll returns all rows in insertion order.
	GetAll(ctx context.Context) ([]models.PendingOperation, error)
}
