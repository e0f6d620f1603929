package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable marks transport-level failures: timeouts, refused
	// connections, no response at all. These are never auth failures.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized marks credential rejection by the server.
	ErrUnauthorized = errors.New("unauthorized")
)

// NormalizedError is the error shape every non-2xx response is reduced to
// before it crosses the client's boundary: a status code (when the server
// answered) and a human-readable message.
type NormalizedError struct {
	StatusCode int
	Message    string
}

func (e *NormalizedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is match the sentinel taxonomy without losing the status
// code carried by the concrete value.
func (e *NormalizedError) Is(target error) bool {
	if target == ErrUnauthorized {
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}
