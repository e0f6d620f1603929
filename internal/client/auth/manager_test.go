package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Samuel-SouzaZz/devquest/internal/client/api"
	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// memStorage is an in-memory securestore.Storage for unit tests.
type memStorage struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{values: map[string][]byte{}}
}

func (s *memStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *memStorage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func seedPair(t *testing.T, m *Manager, access, refresh string) {
	t.Helper()
	require.NoError(t, m.SaveCredentials(context.Background(), &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}))
}

func TestAttach_NoTokenIsAnonymous(t *testing.T) {
	m := NewManager(newMemStorage(), nil)

	req := httptest.NewRequest(http.MethodGet, "http://x/challenges", nil)
	require.NoError(t, m.Attach(context.Background(), req))
	require.Empty(t, req.Header.Get("Authorization"))
}

func TestAttach_SetsBearer(t *testing.T) {
	m := NewManager(newMemStorage(), nil)
	seedPair(t, m, "acc", "ref")

	req := httptest.NewRequest(http.MethodGet, "http://x/challenges", nil)
	require.NoError(t, m.Attach(context.Background(), req))
	require.Equal(t, "Bearer acc", req.Header.Get("Authorization"))
}

func TestClearCredentials_Idempotent(t *testing.T) {
	m := NewManager(newMemStorage(), nil)
	seedPair(t, m, "acc", "ref")
	ctx := context.Background()

	require.NoError(t, m.ClearCredentials(ctx))
	require.NoError(t, m.ClearCredentials(ctx))
	require.False(t, m.Authenticated(ctx))

	// Subsequent Attach produces an unauthenticated request.
	req := httptest.NewRequest(http.MethodGet, "http://x/challenges", nil)
	require.NoError(t, m.Attach(ctx, req))
	require.Empty(t, req.Header.Get("Authorization"))
}

func TestRefresh_SingleFlight(t *testing.T) {
	m := NewManager(newMemStorage(), nil)
	seedPair(t, m, "old-acc", "old-ref")

	var calls atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})
	m.SetRefreshFunc(func(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return &models.TokenPair{AccessToken: "new-acc", RefreshToken: "new-ref"}, nil
	})

	const n = 5
	var wg sync.WaitGroup
	results := make([]*models.TokenPair, n)
	errs := make([]error, n)

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.Refresh(context.Background())
		}(i)
	}

	// The first caller is inside the refresh func; let the rest pile up on
	// the single-flight group before releasing it.
	<-started
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load(), "expected exactly one refresh call")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "new-acc", results[i].AccessToken)
	}

	// The new pair was persisted.
	require.True(t, m.Authenticated(context.Background()))
}

func TestRefresh_PersistsNewPair(t *testing.T) {
	store := newMemStorage()
	m := NewManager(store, nil)
	seedPair(t, m, "old-acc", "old-ref")

	var gotRefreshToken string
	m.SetRefreshFunc(func(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
		gotRefreshToken = refreshToken
		return &models.TokenPair{AccessToken: "new-acc", RefreshToken: "new-ref"}, nil
	})

	pair, err := m.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, "old-ref", gotRefreshToken)
	require.Equal(t, "new-acc", pair.AccessToken)

	stored, err := store.Get(context.Background(), "access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("new-acc"), stored)
}

func TestRefresh_RejectionClearsCredentials(t *testing.T) {
	m := NewManager(newMemStorage(), nil)
	seedPair(t, m, "old-acc", "old-ref")

	m.SetRefreshFunc(func(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
		return nil, &api.NormalizedError{StatusCode: http.StatusUnauthorized, Message: "refresh token expired"}
	})

	_, err := m.Refresh(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.False(t, m.Authenticated(context.Background()))
}

func TestRefresh_TransportFailureKeepsCredentials(t *testing.T) {
	m := NewManager(newMemStorage(), nil)
	seedPair(t, m, "old-acc", "old-ref")

	m.SetRefreshFunc(func(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
		return nil, api.ErrUnavailable
	})

	_, err := m.Refresh(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, api.ErrUnavailable)

	// The credential was never judged by the server; it stays.
	require.True(t, m.Authenticated(context.Background()))
}

func TestRefresh_NoTokenStored(t *testing.T) {
	m := NewManager(newMemStorage(), nil)

	m.SetRefreshFunc(func(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
		t.Fatal("refresh func must not be called without a stored token")
		return nil, nil
	})

	_, err := m.Refresh(context.Background())
	require.ErrorIs(t, err, ErrNoRefreshToken)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestTokenExpired(t *testing.T) {
	m := NewManager(newMemStorage(), nil)
	ctx := context.Background()

	// No token at all.
	require.True(t, m.TokenExpired(ctx))

	// Garbage token.
	seedPair(t, m, "not-a-jwt", "ref")
	require.True(t, m.TokenExpired(ctx))

	// Valid, future exp.
	seedPair(t, m, signedToken(t, time.Now().Add(time.Hour)), "ref")
	require.False(t, m.TokenExpired(ctx))

	// Expired.
	seedPair(t, m, signedToken(t, time.Now().Add(-time.Hour)), "ref")
	require.True(t, m.TokenExpired(ctx))
}
