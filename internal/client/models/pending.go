package models

import "time"

// OpKind identifies which remote write a pending operation replays.
// The set is closed: the sync executor refuses unknown kinds.
type OpKind string

const (
	OpCreateChallenge      OpKind = "create_challenge"
	OpCreateGroupChallenge OpKind = "create_group_challenge"
)

// PendingOperation is one deferred write awaiting network availability.
// It is visible to callers as soon as it is persisted (optimistic read)
// and removed only after a confirmed-successful remote replay.
type PendingOperation struct {
	// ID is generated locally, prefixed "offline_" so it is visually
	// distinguishable from server-issued ids, and never reused.
	ID string `json:"id"`

	Kind    OpKind           `json:"kind"`
	Payload ChallengePayload `json:"payload"`

	// CreatedAt is the device timestamp, used for ordering and display only.
	CreatedAt time.Time `json:"created_at"`

	// Synced stays false until the replay succeeds.
	Synced bool `json:"synced"`
}
