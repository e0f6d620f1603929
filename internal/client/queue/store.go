// Package queue implements the local pending-operation store: a durable,
// crash-safe queue of writes awaiting network availability.
//
// Persistence is two-layered. The serialized operation list under the
// MetadataKey key/value entry is the source of truth; every mutation lands
// there first and only then in the structured pending_operations mirror. The
// mirror exists so operations can be queried and joined locally - its
// failures are logged and swallowed, never surfaced, and never rolled back.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
	"github.com/Samuel-SouzaZz/devquest/internal/client/repositories/metadata"
	"github.com/Samuel-SouzaZz/devquest/internal/client/repositories/pending"
	"github.com/Samuel-SouzaZz/devquest/internal/logging"
	"github.com/google/uuid"
)

// MetadataKey is the fixed key the serialized queue lives under. Stable
// across app versions.
const MetadataKey = "offline_challenges"

// Store is the queue of deferred writes.
type Store interface {
	// Enqueue persists a new operation with synced=false and returns its id.
	// The write is durable in the primary layer before Enqueue returns.
	Enqueue(ctx context.Context, kind models.OpKind, payload models.ChallengePayload) (string, error)

	// List returns all operations, synced or not, in insertion order.
	List(ctx context.Context) ([]models.PendingOperation, error)

	// Remove deletes the operation from both layers. Idempotent.
	Remove(ctx context.Context, id string) error

	// MarkSynced sets synced=true in place without removing the record.
	MarkSynced(ctx context.Context, id string) error

	// CountUnsynced returns how many operations still await replay.
	CountUnsynced(ctx context.Context) (int, error)
}

type store struct {
	md     metadata.Repository
	mirror pending.Repository
	log    logging.Logger

	// mu serializes the read-modify-write cycle over the serialized list.
	// The store is effectively single-writer per device, but concurrent
	// call sites within the process still race.
	mu sync.Mutex
}

func NewStore(md metadata.Repository, mirror pending.Repository, log logging.Logger) Store {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &store{md: md, mirror: mirror, log: log}
}

// NewID generates a queue-local operation id. The "offline_" prefix keeps it
// visually distinguishable from server-issued ids; ids are never reused.
func NewID() string {
	return fmt.Sprintf("offline_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func (s *store) Enqueue(ctx context.Context, kind models.OpKind, payload models.ChallengePayload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops, err := s.load(ctx)
	if err != nil {
		return "", err
	}

	op := models.PendingOperation{
		ID:        NewID(),
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
		Synced:    false,
	}

	ops = append(ops, op)
	if err := s.save(ctx, ops); err != nil {
		return "", err
	}

	// Mirror write is best-effort; the primary write above already made the
	// operation durable.
	if s.mirror != nil {
		if err := s.mirror.Insert(ctx, &op); err != nil {
			s.log.Warn(ctx, "pending operation mirror insert failed", "id", op.ID, "error", err)
		}
	}

	return op.ID, nil
}

func (s *store) List(ctx context.Context) ([]models.PendingOperation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops, err := s.load(ctx)
	if err != nil {
		return err
	}

	filtered := ops[:0]
	for _, op := range ops {
		if op.ID != id {
			filtered = append(filtered, op)
		}
	}
	if len(filtered) != len(ops) {
		if err := s.save(ctx, filtered); err != nil {
			return err
		}
	}

	if s.mirror != nil {
		if err := s.mirror.Delete(ctx, id); err != nil {
			s.log.Warn(ctx, "pending operation mirror delete failed", "id", id, "error", err)
		}
	}
	return nil
}

func (s *store) MarkSynced(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops, err := s.load(ctx)
	if err != nil {
		return err
	}

	changed := false
	for i := range ops {
		if ops[i].ID == id && !ops[i].Synced {
			ops[i].Synced = true
			changed = true
		}
	}
	if changed {
		if err := s.save(ctx, ops); err != nil {
			return err
		}
	}

	if s.mirror != nil {
		if err := s.mirror.MarkSynced(ctx, id); err != nil {
			s.log.Warn(ctx, "pending operation mirror update failed", "id", id, "error", err)
		}
	}
	return nil
}

func (s *store) CountUnsynced(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, op := range ops {
		if !op.Synced {
			count++
		}
	}
	return count, nil
}

func (s *store) load(ctx context.Context) ([]models.PendingOperation, error) {
	data, err := s.md.Get(ctx, MetadataKey)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var ops []models.PendingOperation
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("failed to decode pending queue: %w", err)
	}
	return ops, nil
}

func (s *store) save(ctx context.Context, ops []models.PendingOperation) error {
	data, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("failed to encode pending queue: %w", err)
	}
	return s.md.Set(ctx, MetadataKey, data)
}
