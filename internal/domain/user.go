// Package domain contains the core business entities for Berea.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the bible-study companion.
package domain

import (
	"time"
)

// User represents a registered principal in the system.
// Users own verses, devotionals and prayer requests.
type User struct {
	// ID is the opaque unique identifier for the user (UUID string).
	ID string `json:"id"`

	// Username is the unique login and display name.
	// Lookup is case-insensitive; uniqueness is enforced at creation.
	Username string `json:"username"`

	// PasswordHash is the scrypt encoding of the user's password.
	// This must never be exposed in API responses.
	PasswordHash string `json:"-"`

	// ConversionAge is the age at conversion, if the user chose to share it.
	ConversionAge *int `json:"conversionAge,omitempty"`

	// BaptismDate is the date of baptism, if the user chose to share it.
	BaptismDate *time.Time `json:"baptismDate,omitempty"`

	// Theme is the preferred UI theme ("light", "dark" or empty for default).
	Theme string `json:"theme,omitempty"`

	// Language is the preferred UI language tag (e.g. "pt-BR").
	Language string `json:"language,omitempty"`

	// PixKey is the PIX donation key rendered as a QR code by the client.
	PixKey string `json:"pixKey,omitempty"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser creates a new User with default values.
func NewUser(id, username, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ProfileUpdate describes a partial profile change. Nil fields are untouched.
type ProfileUpdate struct {
	ConversionAge *int
	BaptismDate   *time.Time
	Theme         *string
	Language      *string
	PixKey        *string
}

// Apply merges the update into the user, bumping UpdatedAt when anything changed.
func (u *User) Apply(p ProfileUpdate) {
	changed := false
	if p.ConversionAge != nil {
		u.ConversionAge = p.ConversionAge
		changed = true
	}
	if p.BaptismDate != nil {
		u.BaptismDate = p.BaptismDate
		changed = true
	}
	if p.Theme != nil {
		u.Theme = *p.Theme
		changed = true
	}
	if p.Language != nil {
		u.Language = *p.Language
		changed = true
	}
	if p.PixKey != nil {
		u.PixKey = *p.PixKey
		changed = true
	}
	if changed {
		u.UpdatedAt = time.Now().UTC()
	}
}
