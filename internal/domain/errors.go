// Package domain contains the core business entities for Berea.
package domain

import "errors"

// Sentinel errors raised by the repository layer. The service layer
// carries the user-facing error taxonomy; these only classify what the
// store reported.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same username exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrSessionNotFound indicates no session exists for the token.
	ErrSessionNotFound = errors.New("session not found")

	// ErrVerseNotFound indicates the requested verse does not exist.
	ErrVerseNotFound = errors.New("verse not found")

	// ErrPrayerNotFound indicates the requested prayer does not exist.
	ErrPrayerNotFound = errors.New("prayer not found")
)
