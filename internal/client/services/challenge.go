package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Samuel-SouzaZz/devquest/internal/client/api"
	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
	"github.com/Samuel-SouzaZz/devquest/internal/client/queue"
	"github.com/Samuel-SouzaZz/devquest/internal/client/repositories/challenges"
	"github.com/Samuel-SouzaZz/devquest/internal/client/syncer"
	"github.com/Samuel-SouzaZz/devquest/internal/logging"
)

// ChallengeView is what the UI layer renders: a challenge plus whether it is
// still waiting to be replayed.
type ChallengeView struct {
	ID         string
	Title      string
	Difficulty models.Difficulty
	Language   string
	XP         int
	GroupID    string
	Pending    bool
}

// SyncRunner triggers a queue replay. *syncer.Syncer satisfies it.
type SyncRunner interface {
	Run(ctx context.Context) (syncer.Result, error)
}

// ConnectivityChecker is the point-in-time online check.
type ConnectivityChecker interface {
	IsOnline(ctx context.Context) bool
}

// ChallengeService creates and lists challenges with offline fallback:
// online creates go straight to the server, offline creates land in the
// pending queue and stay visible immediately.
type ChallengeService interface {
	// Create submits a challenge. The returned view has Pending=true when
	// the write was queued instead of sent.
	Create(ctx context.Context, p models.ChallengePayload) (*ChallengeView, error)

	// List merges the server's challenges (or the local cache when
	// disconnected) with every unsynced queued creation.
	List(ctx context.Context) ([]ChallengeView, error)

	// PendingCount reports how many queued writes await replay.
	PendingCount(ctx context.Context) (int, error)
}

type challengeService struct {
	api     api.API
	queue   queue.Store
	monitor ConnectivityChecker
	cache   challenges.Repository
	syncer  SyncRunner
	log     logging.Logger
}

func NewChallengeService(api api.API, q queue.Store, monitor ConnectivityChecker, cache challenges.Repository, sync SyncRunner, log logging.Logger) ChallengeService {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &challengeService{api: api, queue: q, monitor: monitor, cache: cache, syncer: sync, log: log}
}

func kindFor(p models.ChallengePayload) models.OpKind {
	if p.GroupID != "" {
		return models.OpCreateGroupChallenge
	}
	return models.OpCreateChallenge
}

func (s *challengeService) Create(ctx context.Context, p models.ChallengePayload) (*ChallengeView, error) {
	if !s.monitor.IsOnline(ctx) {
		return s.enqueue(ctx, p)
	}

	ch, err := s.send(ctx, p)
	if err != nil {
		if errors.Is(err, api.ErrUnavailable) {
			// Connectivity dropped between the check and the call; queue it.
			return s.enqueue(ctx, p)
		}
		return nil, err
	}

	if err := s.cache.Upsert(ctx, ch); err != nil {
		s.log.Warn(ctx, "challenge cache update failed", "id", ch.ID, "error", err)
	}

	// Opportunistic replay of anything still queued from an earlier
	// offline stretch; the syncer no-ops when there is nothing to do.
	if s.syncer != nil {
		if _, err := s.syncer.Run(ctx); err != nil {
			s.log.Warn(ctx, "post-create sync failed", "error", err)
		}
	}

	return &ChallengeView{
		ID:         ch.ID,
		Title:      ch.Title,
		Difficulty: ch.Difficulty,
		Language:   ch.Language,
		XP:         ch.XP,
		GroupID:    ch.GroupID,
	}, nil
}

func (s *challengeService) send(ctx context.Context, p models.ChallengePayload) (*models.Challenge, error) {
	if p.GroupID != "" {
		return s.api.CreateGroupChallenge(ctx, p.GroupID, p)
	}
	return s.api.CreateChallenge(ctx, p)
}

func (s *challengeService) enqueue(ctx context.Context, p models.ChallengePayload) (*ChallengeView, error) {
	id, err := s.queue.Enqueue(ctx, kindFor(p), p)
	if err != nil {
		return nil, fmt.Errorf("failed to queue challenge: %w", err)
	}

	s.log.Info(ctx, "challenge queued for sync", "id", id)

	return &ChallengeView{
		ID:         id,
		Title:      p.Title,
		Difficulty: p.Difficulty,
		Language:   p.Language,
		XP:         p.XP,
		GroupID:    p.GroupID,
		Pending:    true,
	}, nil
}

func (s *challengeService) List(ctx context.Context) ([]ChallengeView, error) {
	var result []ChallengeView

	remote, err := s.api.ListChallenges(ctx)
	if err == nil {
		if cerr := s.cache.ReplaceAll(ctx, remote); cerr != nil {
			s.log.Warn(ctx, "challenge cache refresh failed", "error", cerr)
		}
		result = views(remote)
	} else {
		cached, cerr := s.cache.GetAll(ctx)
		if cerr != nil {
			return nil, fmt.Errorf("failed to list challenges: %w", err)
		}
		s.log.Warn(ctx, "listing from local cache", "error", err)
		result = views(cached)
	}

	// Optimistic visibility: queued creations show up immediately, tagged
	// pending, until the replay removes them.
	ops, err := s.queue.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		if op.Synced {
			continue
		}
		result = append(result, ChallengeView{
			ID:         op.ID,
			Title:      op.Payload.Title,
			Difficulty: op.Payload.Difficulty,
			Language:   op.Payload.Language,
			XP:         op.Payload.XP,
			GroupID:    op.Payload.GroupID,
			Pending:    true,
		})
	}

	return result, nil
}

func (s *challengeService) PendingCount(ctx context.Context) (int, error) {
	return s.queue.CountUnsynced(ctx)
}

func views(list []models.Challenge) []ChallengeView {
	result := make([]ChallengeView, 0, len(list))
	for _, ch := range list {
		result = append(result, ChallengeView{
			ID:         ch.ID,
			Title:      ch.Title,
			Difficulty: ch.Difficulty,
			Language:   ch.Language,
			XP:         ch.XP,
			GroupID:    ch.GroupID,
		})
	}
	return result
}
