package domain

import (
	"time"
)

// DefaultSessionTTL is the fixed session lifetime. Sessions do not slide:
// a session expires DefaultSessionTTL after login regardless of activity.
const DefaultSessionTTL = 24 * time.Hour

// Session binds a transport-level token to an authenticated user.
// Sessions live in the durable store and survive process restarts.
type Session struct {
	// Token is the opaque, unguessable session identifier.
	Token string `json:"token"`

	// UserID references the authenticated user. A session always references
	// exactly one user; if that user disappears the session is dead.
	UserID string `json:"userId"`

	// CreatedAt is the login timestamp.
	CreatedAt time.Time `json:"createdAt"`

	// ExpiresAt is the fixed expiry timestamp.
	ExpiresAt time.Time `json:"expiresAt"`

	// IPAddress is the remote address observed at login.
	IPAddress string `json:"ipAddress,omitempty"`

	// UserAgent is the client user agent observed at login.
	UserAgent string `json:"userAgent,omitempty"`
}

// NewSession creates a session for the given user with a fixed TTL.
func NewSession(token, userID string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// TTL returns the remaining lifetime, or zero if expired.
func (s *Session) TTL() time.Duration {
	remaining := time.Until(s.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
