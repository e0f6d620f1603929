// Package syncer replays the pending-operation queue against the remote API.
// At most one sync run is active per process: a trigger arriving while one
// runs is a no-op returning a zero Result, never a second concurrent run.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
	"github.com/Samuel-SouzaZz/devquest/internal/client/queue"
	"github.com/Samuel-SouzaZz/devquest/internal/client/repositories/metadata"
	"github.com/Samuel-SouzaZz/devquest/internal/logging"
)

// MarkerKey is the metadata key holding the transient "sync in progress"
// marker. It exists only so a crashed run is observable; ClearStaleLock
// wipes it at startup so a previous crash can never wedge syncing.
const MarkerKey = "sync_in_progress"

// Result summarizes one sync run.
type Result struct {
	Success int
	Failed  int
}

// Dispatcher is the slice of the remote API the executor needs: one call
// per operation kind.
type Dispatcher interface {
	CreateChallenge(ctx context.Context, p models.ChallengePayload) (*models.Challenge, error)
	CreateGroupChallenge(ctx context.Context, groupID string, p models.ChallengePayload) (*models.Challenge, error)
}

// ConnectivityChecker is the point-in-time online check.
type ConnectivityChecker interface {
	IsOnline(ctx context.Context) bool
}

// Syncer owns the reentrancy guard and the replay loop.
type Syncer struct {
	queue   queue.Store
	api     Dispatcher
	monitor ConnectivityChecker
	md      metadata.Repository
	log     logging.Logger

	// running is the in-memory reentrancy guard: first caller does the work,
	// everyone else gets a zero Result.
	running atomic.Bool

	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

func New(q queue.Store, api Dispatcher, monitor ConnectivityChecker, md metadata.Repository, log logging.Logger) *Syncer {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &Syncer{
		queue:     q,
		api:       api,
		monitor:   monitor,
		md:        md,
		log:       log,
		listeners: make(map[int]func()),
	}
}

// AddListener registers fn to run after every completed sync run, whether or
// not anything was replayed. Returns an unsubscribe function.
func (s *Syncer) AddListener(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// ClearStaleLock removes a sync-in-progress marker left behind by a crashed
// run. Call once at startup, before the first sync trigger.
func (s *Syncer) ClearStaleLock(ctx context.Context) {
	if s.md == nil {
		return
	}
	stale, err := s.md.Get(ctx, MarkerKey)
	if err == nil && len(stale) > 0 {
		s.log.Warn(ctx, "clearing stale sync marker from a previous run")
	}
	if err := s.md.Delete(ctx, MarkerKey); err != nil {
		s.log.Warn(ctx, "failed to clear sync marker", "error", err)
	}
}

// Run performs one sync run: snapshot the unsynced operations, replay them
// sequentially in insertion order, remove each one only after its remote
// call succeeded. A failure of one item never blocks the rest. Returns the
// zero Result immediately when a run is already active or the device is
// offline.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Result{}, nil
	}
	defer s.running.Store(false)

	if !s.monitor.IsOnline(ctx) {
		return Result{}, nil
	}

	s.setMarker(ctx)
	defer s.clearMarker(ctx)
	defer s.notify()

	ops, err := s.queue.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read pending queue: %w", err)
	}

	var res Result
	for _, op := range ops {
		if op.Synced {
			continue
		}

		if err := s.dispatch(ctx, op); err != nil {
			// The item stays queued untouched; the next run retries it.
			s.log.Warn(ctx, "pending operation replay failed", "id", op.ID, "kind", op.Kind, "error", err)
			res.Failed++
			continue
		}

		if err := s.queue.Remove(ctx, op.ID); err != nil {
			s.log.Error(ctx, "failed to remove replayed operation", "id", op.ID, "error", err)
			res.Failed++
			continue
		}
		res.Success++
	}

	if res.Success > 0 || res.Failed > 0 {
		s.log.Info(ctx, "sync run finished", "success", res.Success, "failed", res.Failed)
	}
	return res, nil
}

func (s *Syncer) dispatch(ctx context.Context, op models.PendingOperation) error {
	switch op.Kind {
	case models.OpCreateChallenge:
		_, err := s.api.CreateChallenge(ctx, op.Payload)
		return err
	case models.OpCreateGroupChallenge:
		_, err := s.api.CreateGroupChallenge(ctx, op.Payload.GroupID, op.Payload)
		return err
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

func (s *Syncer) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Syncer) setMarker(ctx context.Context) {
	if s.md == nil {
		return
	}
	if err := s.md.Set(ctx, MarkerKey, []byte("1")); err != nil {
		s.log.Warn(ctx, "failed to set sync marker", "error", err)
	}
}

func (s *Syncer) clearMarker(ctx context.Context) {
	if s.md == nil {
		return
	}
	if err := s.md.Delete(ctx, MarkerKey); err != nil {
		s.log.Warn(ctx, "failed to clear sync marker", "error", err)
	}
}
