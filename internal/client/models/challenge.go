// Package models defines client-side data models used by the DevQuest CLI.
package models

import "time"

// Difficulty levels accepted by the platform.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Visibility controls who can see a challenge.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ChallengePayload is the immutable snapshot of everything needed to create
// a challenge on the server. It is captured at creation time and never
// mutated afterwards, so a queued offline write replays exactly what the
// user submitted.
type ChallengePayload struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Difficulty   Difficulty `json:"difficulty"`
	CodeTemplate string     `json:"code_template"`
	Visibility   Visibility `json:"visibility"`
	Language     string     `json:"language"`
	GroupID      string     `json:"group_id,omitempty"`
	XP           int        `json:"xp"`
}

// Challenge is a challenge record as returned by the server.
type Challenge struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Language    string     `json:"language"`
	XP          int        `json:"xp"`
	GroupID     string     `json:"group_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
