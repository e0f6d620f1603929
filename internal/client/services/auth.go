// Package services contains the application services the CLI commands call:
// authentication session handling and challenge creation/listing with
// offline fallback.
package services

import (
	"context"
	"fmt"

	"github.com/Samuel-SouzaZz/devquest/internal/client/api"
	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
)

// CredentialKeeper is the slice of the token manager the auth service needs.
type CredentialKeeper interface {
	SaveCredentials(ctx context.Context, pair *models.TokenPair) error
	ClearCredentials(ctx context.Context) error
	Authenticated(ctx context.Context) bool
	TokenExpired(ctx context.Context) bool
}

// AuthService manages the user session.
//
// Contract:
//   - Register / Login: authenticate against the server and persist the
//     credential pair.
//   - Logout: clear stored credentials; queued offline work survives.
//   - Me: fetch the authenticated profile.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	Authenticated(ctx context.Context) bool

	// TokenExpired reports whether the stored access token's exp claim has
	// passed, so the UI can show session state without a network call.
	TokenExpired(ctx context.Context) bool
}

type authService struct {
	api    api.API
	tokens CredentialKeeper
}

func NewAuthService(api api.API, tokens CredentialKeeper) AuthService {
	return &authService{api: api, tokens: tokens}
}

func (a *authService) Register(ctx context.Context, name, email, password string) error {
	pair, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	if err := a.tokens.SaveCredentials(ctx, pair); err != nil {
		return fmt.Errorf("credential saving error: %w", err)
	}
	return nil
}

func (a *authService) Login(ctx context.Context, email, password string) error {
	pair, err := a.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	if err := a.tokens.SaveCredentials(ctx, pair); err != nil {
		return fmt.Errorf("credential saving error: %w", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.tokens.ClearCredentials(ctx)
}

func (a *authService) Me(ctx context.Context) (*models.User, error) {
	return a.api.Me(ctx)
}

func (a *authService) Authenticated(ctx context.Context) bool {
	return a.tokens.Authenticated(ctx)
}

func (a *authService) TokenExpired(ctx context.Context) bool {
	return a.tokens.TokenExpired(ctx)
}
