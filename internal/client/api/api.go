// Package api is the Remote API Client: the sole network egress point of
// the application. It maps requests/responses to and from the platform's
// REST endpoints and normalizes every failure into the taxonomy the sync
// core relies on (credential-rejected vs transport vs domain-rejected).
package api

import (
	"context"
	"strings"

	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
)

// Route paths on the platform API.
const (
	pathRegister = "/auth/register"
	pathLogin    = "/auth/login"
	pathRefresh  = "/auth/refresh"
	pathMe       = "/auth/me"
	pathHealth   = "/health"

	pathChallenges      = "/challenges"
	pathGroupChallenges = "/groups/%s/challenges"
)

// IsAuthPath reports whether path is an authentication endpoint. A 401 from
// one of these must never trigger a token refresh, or the refresh endpoint
// could recurse into itself.
func IsAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/")
}

// API is the surface the services and the sync executor consume. *Client is
// the production implementation; tests substitute fakes.
type API interface {
	Register(ctx context.Context, name, email, password string) (*models.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Me(ctx context.Context) (*models.User, error)
	Ping(ctx context.Context) error

	CreateChallenge(ctx context.Context, p models.ChallengePayload) (*models.Challenge, error)
	CreateGroupChallenge(ctx context.Context, groupID string, p models.ChallengePayload) (*models.Challenge, error)
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
}
