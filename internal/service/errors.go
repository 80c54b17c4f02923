// Package service provides business logic services for Berea.
package service

import "errors"

// Common service errors.
var (
	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUsernameReserved   = errors.New("username is reserved")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("invalid username: must be 3-255 characters")
	ErrInvalidPassword    = errors.New("invalid password: must be at least 6 characters")

	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")

	// Content errors
	ErrVerseNotFound      = errors.New("verse not found")
	ErrDevotionalNotFound = errors.New("devotional not found")
	ErrPrayerNotFound     = errors.New("prayer not found")
	ErrInvalidInput       = errors.New("invalid input")

	// General errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternalError    = errors.New("internal server error")
)
