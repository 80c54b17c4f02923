package domain

import (
	"time"
)

// Verse is a scripture passage a user is memorizing.
type Verse struct {
	// ID is the opaque unique identifier (UUID string).
	ID string `json:"id"`

	// UserID is the owner of this verse.
	UserID string `json:"userId"`

	// Reference is the scripture reference (e.g. "John 3:16").
	Reference string `json:"reference"`

	// Content is the verse text being memorized.
	Content string `json:"content"`

	// Progress is the memorization progress, 0-100.
	Progress int `json:"progress"`

	// LastReviewed is the last review timestamp, nil if never reviewed.
	LastReviewed *time.Time `json:"lastReviewed,omitempty"`

	// CreatedAt is the timestamp when the verse was added.
	CreatedAt time.Time `json:"createdAt"`
}

// NewVerse creates a verse with zero progress.
func NewVerse(id, userID, reference, content string) *Verse {
	return &Verse{
		ID:        id,
		UserID:    userID,
		Reference: reference,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// Devotional is a dated devotional entry written by a user.
type Devotional struct {
	// ID is the opaque unique identifier (UUID string).
	ID string `json:"id"`

	// UserID is the author of this devotional.
	UserID string `json:"userId"`

	// Title is the devotional title.
	Title string `json:"title"`

	// Content is the devotional body.
	Content string `json:"content"`

	// Theme is an optional thematic tag.
	Theme string `json:"theme,omitempty"`

	// Date is the devotional date.
	Date time.Time `json:"date"`

	// CreatedAt is the timestamp when the devotional was written.
	CreatedAt time.Time `json:"createdAt"`
}

// Prayer is a logged prayer request.
type Prayer struct {
	// ID is the opaque unique identifier (UUID string).
	ID string `json:"id"`

	// UserID is the owner of this prayer request.
	UserID string `json:"userId"`

	// Title is a short summary of the request.
	Title string `json:"title"`

	// Description is the full request text.
	Description string `json:"description"`

	// Category groups requests (e.g. "family", "health", "gratitude").
	Category string `json:"category"`

	// IsAnswered marks the request as answered.
	IsAnswered bool `json:"isAnswered"`

	// Reminders holds reminder times as "HH:MM" strings.
	Reminders []string `json:"reminders"`

	// CreatedAt is the timestamp when the prayer was logged.
	CreatedAt time.Time `json:"createdAt"`
}
