// Package securestore abstracts the platform's secure storage behind a
// single capability interface. Exactly two secrets live here: the access
// token and the refresh token. Which implementation backs it is decided at
// composition time, never by runtime branching in business logic.
package securestore

import "context"

// Fixed persistence keys. These must remain stable across app versions so
// upgrades never orphan a stored credential pair.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Storage is a key/value abstraction over secret persistence.
type Storage interface {
	// Get returns the stored value, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
