package auth

import (
	"net/http"

	"github.com/Samuel-SouzaZz/devquest/internal/client/api"
)

// Transport wraps base with the manager's auth handling: every request goes
// out with the current access token attached; a 401 on a non-auth endpoint
// triggers one single-flight refresh followed by one retry of the original
// request with the new token. A 401 on an auth endpoint clears the stored
// credentials and is propagated as-is, so the refresh endpoint can never
// recurse into itself.
func (m *Manager) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &transport{base: base, mgr: m}
}

type transport struct {
	base http.RoundTripper
	mgr  *Manager
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// RoundTrippers must not modify the caller's request; attach the
	// credential to a clone. The body is shared, it is consumed exactly once
	// either way.
	attempt := req.Clone(ctx)
	if err := t.mgr.Attach(ctx, attempt); err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(attempt)
	if err != nil {
		// No response at all: a transport failure, never an auth failure.
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	if api.IsAuthPath(req.URL.Path) {
		_ = t.mgr.ClearCredentials(ctx)
		return resp, nil
	}

	pair, err := t.mgr.Refresh(ctx)
	if err != nil {
		// Refresh failed; the caller sees the original rejection.
		return resp, nil
	}

	retry, err := cloneRequest(req)
	if err != nil {
		return resp, nil
	}
	resp.Body.Close()

	retry.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	// The retry goes through the base transport directly: structurally at
	// most one retry per request, a second 401 just comes back.
	return t.base.RoundTrip(retry)
}

// cloneRequest duplicates req for the retry, rewinding the body via GetBody.
func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}
