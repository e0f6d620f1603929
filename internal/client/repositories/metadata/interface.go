// Package metadata implements the client's primary key/value persistence
// layer. Fixed keys stored here (credential tokens, the serialized pending
// queue, the sync-in-progress marker) must remain stable across app versions.
package metadata

import "context"

// Repository is a durable key/value store.
type Repository interface {
	// Get returns the value for key, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key.
	Clear(ctx context.Context) error
}
