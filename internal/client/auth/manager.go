// Package auth owns the credential pair lifecycle: attaching the access
// token to outgoing requests, refreshing it when the server rejects it, and
// clearing it when the session dies. Refreshing is single-flight: any number
// of concurrently failing requests collapse into exactly one refresh call.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Samuel-SouzaZz/devquest/internal/client/api"
	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
	"github.com/Samuel-SouzaZz/devquest/internal/client/securestore"
	"github.com/Samuel-SouzaZz/devquest/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// ErrNoRefreshToken is returned by Refresh when no refresh token is stored;
// the session cannot be recovered and the caller must re-authenticate.
var ErrNoRefreshToken = errors.New("no refresh token stored")

// RefreshFunc performs the network call that exchanges a refresh token for a
// new pair. Installed at composition time (api.Client.RefreshTokens) to keep
// this package off the wire.
type RefreshFunc func(ctx context.Context, refreshToken string) (*models.TokenPair, error)

// Manager is the token lifecycle manager. Safe for concurrent use.
type Manager struct {
	store     securestore.Storage
	log       logging.Logger
	refreshFn RefreshFunc

	// refresh is the only shared mutable state: first caller does the
	// network call, all concurrent callers await the same outcome.
	refresh singleflight.Group
}

func NewManager(store securestore.Storage, log logging.Logger) *Manager {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &Manager{store: store, log: log}
}

// SetRefreshFunc installs the wire call used by Refresh. Must be called
// before the first request goes out; composition code does this right after
// constructing the API client.
func (m *Manager) SetRefreshFunc(fn RefreshFunc) {
	m.refreshFn = fn
}

// Attach sets the stored access token as a bearer credential on req.
// No-op when nothing is stored, so anonymous requests stay anonymous.
func (m *Manager) Attach(ctx context.Context, req *http.Request) error {
	token, err := m.store.Get(ctx, securestore.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}
	if len(token) == 0 {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+string(token))
	return nil
}

// SaveCredentials persists a new pair, overwriting the previous one.
func (m *Manager) SaveCredentials(ctx context.Context, pair *models.TokenPair) error {
	if err := m.store.Set(ctx, securestore.KeyAccessToken, []byte(pair.AccessToken)); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if err := m.store.Set(ctx, securestore.KeyRefreshToken, []byte(pair.RefreshToken)); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// ClearCredentials deletes both tokens. Idempotent.
func (m *Manager) ClearCredentials(ctx context.Context) error {
	if err := m.store.Delete(ctx, securestore.KeyAccessToken); err != nil {
		return fmt.Errorf("failed to delete access token: %w", err)
	}
	if err := m.store.Delete(ctx, securestore.KeyRefreshToken); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// Authenticated reports whether an access token is currently stored.
func (m *Manager) Authenticated(ctx context.Context) bool {
	token, err := m.store.Get(ctx, securestore.KeyAccessToken)
	return err == nil && len(token) > 0
}

// TokenExpired inspects the stored access token's exp claim without
// verifying the signature (the server is the verifier; we only need the
// timestamp). Returns true when no token is stored or it cannot be parsed.
func (m *Manager) TokenExpired(ctx context.Context) bool {
	token, err := m.store.Get(ctx, securestore.KeyAccessToken)
	if err != nil || len(token) == 0 {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(string(token), claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// No exp claim: nothing to go on, treat as still valid.
		return false
	}
	return time.Now().After(exp.Time)
}

// Refresh exchanges the refresh token for a new pair and persists it.
//
// Concurrency contract: N concurrent calls produce exactly one network call;
// every caller receives the same pair or the same error. On credential
// rejection (the server answered and refused) or a missing refresh token,
// all stored credentials are cleared and the failure is terminal for the
// session. Transport failures are propagated without clearing, since the
// credential was never actually judged.
func (m *Manager) Refresh(ctx context.Context) (*models.TokenPair, error) {
	v, err, _ := m.refresh.Do("refresh", func() (any, error) {
		return m.doRefresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.TokenPair), nil
}

func (m *Manager) doRefresh(ctx context.Context) (*models.TokenPair, error) {
	token, err := m.store.Get(ctx, securestore.KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh token: %w", err)
	}
	if len(token) == 0 {
		_ = m.ClearCredentials(ctx)
		return nil, ErrNoRefreshToken
	}

	pair, err := m.refreshFn(ctx, string(token))
	if err != nil {
		var nerr *api.NormalizedError
		if errors.As(err, &nerr) {
			// The server rejected the refresh token itself; the session
			// is over until the user logs in again.
			m.log.Warn(ctx, "refresh token rejected, clearing credentials", "status", nerr.StatusCode)
			_ = m.ClearCredentials(ctx)
		}
		return nil, fmt.Errorf("refresh failed: %w", err)
	}

	if err := m.SaveCredentials(ctx, pair); err != nil {
		return nil, err
	}

	m.log.Info(ctx, "credentials refreshed")
	return pair, nil
}
