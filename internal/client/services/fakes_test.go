package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
	"github.com/Samuel-SouzaZz/devquest/internal/client/syncer"
)

// fakeAPI captures the last call per method so tests can assert on what
// reached the wire. Error fields make individual calls fail.
type fakeAPI struct {
	LastRegisterEmail string
	LastLoginEmail    string
	LastPayload       models.ChallengePayload
	LastGroupID       string

	RegisterErr error
	LoginErr    error
	CreateErr   error
	ListErr     error

	Pair       *models.TokenPair
	Challenges []models.Challenge
}

func (f *fakeAPI) Register(ctx context.Context, name, email, password string) (*models.TokenPair, error) {
	f.LastRegisterEmail = email
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	return f.Pair, nil
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	f.LastLoginEmail = email
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return f.Pair, nil
}

func (f *fakeAPI) Me(ctx context.Context) (*models.User, error) {
	return &models.User{ID: "u1", Name: "Dev"}, nil
}

func (f *fakeAPI) Ping(ctx context.Context) error { return nil }

func (f *fakeAPI) CreateChallenge(ctx context.Context, p models.ChallengePayload) (*models.Challenge, error) {
	f.LastPayload = p
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return &models.Challenge{
		ID: "srv-1", Title: p.Title, Difficulty: p.Difficulty,
		Language: p.Language, XP: p.XP,
	}, nil
}

func (f *fakeAPI) CreateGroupChallenge(ctx context.Context, groupID string, p models.ChallengePayload) (*models.Challenge, error) {
	f.LastGroupID = groupID
	f.LastPayload = p
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return &models.Challenge{
		ID: "srv-1", Title: p.Title, Difficulty: p.Difficulty,
		Language: p.Language, XP: p.XP, GroupID: groupID,
	}, nil
}

func (f *fakeAPI) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Challenges, nil
}

// fakeKeeper records credential operations.
type fakeKeeper struct {
	LastSaved *models.TokenPair
	Cleared   bool
	Expired   bool
}

func (f *fakeKeeper) SaveCredentials(ctx context.Context, pair *models.TokenPair) error {
	f.LastSaved = pair
	return nil
}

func (f *fakeKeeper) ClearCredentials(ctx context.Context) error {
	f.Cleared = true
	f.LastSaved = nil
	return nil
}

func (f *fakeKeeper) Authenticated(ctx context.Context) bool { return f.LastSaved != nil }

func (f *fakeKeeper) TokenExpired(ctx context.Context) bool { return f.Expired }

// memQueue is a minimal in-memory queue.Store.
type memQueue struct {
	mu  sync.Mutex
	ops []models.PendingOperation
	n   int
}

func (q *memQueue) Enqueue(ctx context.Context, kind models.OpKind, payload models.ChallengePayload) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.n++
	id := fmt.Sprintf("offline_%d", q.n)
	q.ops = append(q.ops, models.PendingOperation{ID: id, Kind: kind, Payload: payload})
	return id, nil
}

func (q *memQueue) List(ctx context.Context) ([]models.PendingOperation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.PendingOperation, len(q.ops))
	copy(out, q.ops)
	return out, nil
}

func (q *memQueue) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, op := range q.ops {
		if op.ID == id {
			q.ops = append(q.ops[:i], q.ops[i+1:]...)
			break
		}
	}
	return nil
}

func (q *memQueue) MarkSynced(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.ops {
		if q.ops[i].ID == id {
			q.ops[i].Synced = true
		}
	}
	return nil
}

func (q *memQueue) CountUnsynced(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, op := range q.ops {
		if !op.Synced {
			n++
		}
	}
	return n, nil
}

// memCache is a map-backed challenges.Repository.
type memCache struct {
	mu    sync.Mutex
	items map[string]models.Challenge
	order []string
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string]models.Challenge)}
}

func (c *memCache) Upsert(ctx context.Context, ch *models.Challenge) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[ch.ID]; !ok {
		c.order = append(c.order, ch.ID)
	}
	c.items[ch.ID] = *ch
	return nil
}

func (c *memCache) ReplaceAll(ctx context.Context, list []models.Challenge) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]models.Challenge, len(list))
	c.order = nil
	for _, ch := range list {
		c.items[ch.ID] = ch
		c.order = append(c.order, ch.ID)
	}
	return nil
}

func (c *memCache) GetAll(ctx context.Context) ([]models.Challenge, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Challenge, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out, nil
}

func (c *memCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]models.Challenge)
	c.order = nil
	return nil
}

type stubMonitor struct{ online bool }

func (m *stubMonitor) IsOnline(ctx context.Context) bool { return m.online }

// stubSyncer counts triggers.
type stubSyncer struct{ runs int }

func (s *stubSyncer) Run(ctx context.Context) (syncer.Result, error) {
	s.runs++
	return syncer.Result{}, nil
}
