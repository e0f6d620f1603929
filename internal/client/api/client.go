package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Samuel-SouzaZz/devquest/internal/client/models"
)

const defaultTimeout = 10 * time.Second

// Client talks to the platform's REST API over net/http. The transport is
// injected at composition time; in production it is the token manager's
// refreshing transport, so authentication stays transparent here.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

func New(baseURL string, timeout time.Duration, transport http.RoundTripper) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: transport},
		timeout: timeout,
	}
}

// errorBody is the JSON error envelope the server uses.
type errorBody struct {
	Message string `json:"message"`
}

// request performs one HTTP call with the per-call timeout and decodes the
// JSON response into out (when non-nil). Non-2xx responses come back as
// *NormalizedError; failures without a response wrap ErrUnavailable.
func (c *Client) request(ctx context.Context, method, path string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		nerr := &NormalizedError{StatusCode: resp.StatusCode}
		var eb errorBody
		if jsonErr := json.Unmarshal(data, &eb); jsonErr == nil {
			nerr.Message = eb.Message
		}
		return nerr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

type authResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*models.TokenPair, error) {
	req := map[string]string{"name": name, "email": email, "password": password}

	var resp authResponse
	if err := c.request(ctx, http.MethodPost, pathRegister, req, &resp); err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	req := map[string]string{"email": email, "password": password}

	var resp authResponse
	if err := c.request(ctx, http.MethodPost, pathLogin, req, &resp); err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}

// RefreshTokens exchanges the refresh token for a new credential pair. It is
// installed into the token manager at composition time; the manager owns the
// single-flight collapsing, this is just the wire call.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	req := map[string]string{"refreshToken": refreshToken}

	var resp authResponse
	if err := c.request(ctx, http.MethodPost, pathRefresh, req, &resp); err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.request(ctx, http.MethodGet, pathMe, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Ping probes the health endpoint. Used by the connectivity monitor as its
// point-in-time online check.
func (c *Client) Ping(ctx context.Context) error {
	return c.request(ctx, http.MethodGet, pathHealth, nil, nil)
}

func (c *Client) CreateChallenge(ctx context.Context, p models.ChallengePayload) (*models.Challenge, error) {
	var ch models.Challenge
	if err := c.request(ctx, http.MethodPost, pathChallenges, p, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *Client) CreateGroupChallenge(ctx context.Context, groupID string, p models.ChallengePayload) (*models.Challenge, error) {
	var ch models.Challenge
	path := fmt.Sprintf(pathGroupChallenges, groupID)
	if err := c.request(ctx, http.MethodPost, path, p, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *Client) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	var list []models.Challenge
	if err := c.request(ctx, http.MethodGet, pathChallenges, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
