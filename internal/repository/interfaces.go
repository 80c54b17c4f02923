// Package repository defines data access interfaces for Berea.
// These interfaces abstract database operations, allowing for different
// implementations (SQLite, PostgreSQL, in-memory for testing) while keeping
// the service layer clean.
package repository

import (
	"context"
	"time"

	"github.com/berea-app/berea/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user. Returns domain.ErrUserAlreadyExists when
	// the username is taken (case-insensitive).
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by username. Lookup is case-insensitive.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// List returns all users with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)

	// ExistsByUsername checks if a user with the given username exists.
	// The check is case-insensitive.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// =============================================================================
// Session Repository
// =============================================================================

// SessionRepository defines the interface for session data access.
// Sessions live in the durable store so they survive process restarts.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *domain.Session) error

	// GetByToken retrieves a session by its token.
	// Returns domain.ErrSessionNotFound when no record exists.
	GetByToken(ctx context.Context, token string) (*domain.Session, error)

	// Delete removes a session by token. Deleting a missing session is not
	// an error; logout must be idempotent.
	Delete(ctx context.Context, token string) error

	// DeleteByUserID removes all sessions belonging to a user.
	DeleteByUserID(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes sessions whose expiry has passed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// =============================================================================
// Content Repositories
// =============================================================================

// VerseRepository defines the interface for verse data access.
type VerseRepository interface {
	// Create creates a new verse.
	Create(ctx context.Context, verse *domain.Verse) error

	// GetByID retrieves a verse by ID.
	GetByID(ctx context.Context, id string) (*domain.Verse, error)

	// ListByUserID returns all verses owned by a user.
	ListByUserID(ctx context.Context, userID string) ([]*domain.Verse, error)

	// Update updates an existing verse.
	Update(ctx context.Context, verse *domain.Verse) error
}

// DevotionalRepository defines the interface for devotional data access.
type DevotionalRepository interface {
	// Create creates a new devotional.
	Create(ctx context.Context, devotional *domain.Devotional) error

	// ListByUserID returns all devotionals written by a user.
	ListByUserID(ctx context.Context, userID string) ([]*domain.Devotional, error)
}

// PrayerRepository defines the interface for prayer data access.
type PrayerRepository interface {
	// Create creates a new prayer request.
	Create(ctx context.Context, prayer *domain.Prayer) error

	// GetByID retrieves a prayer by ID.
	GetByID(ctx context.Context, id string) (*domain.Prayer, error)

	// ListByUserID returns all prayer requests owned by a user.
	ListByUserID(ctx context.Context, userID string) ([]*domain.Prayer, error)

	// Update updates an existing prayer.
	Update(ctx context.Context, prayer *domain.Prayer) error
}

// =============================================================================
// Cache Interface
// =============================================================================

// Cache defines the interface for the session resolution cache.
// Implemented by Redis for multi-instance deployments and by an in-memory
// cache for single-node ones. The cache is an optimization: the durable
// store remains the source of truth for sessions.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// TTL returns the remaining TTL for a key.
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// CacheKey generates cache keys for common scenarios.
type CacheKey struct{}

// Session returns a cache key for a session record.
func (CacheKey) Session(token string) string {
	return "cache:session:" + token
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// ListResult is a generic paginated list result.
type ListResult[T any] struct {
	// Items is the list of items.
	Items []*T

	// Total is the total number of items (without pagination).
	Total int64

	// Offset is the current offset.
	Offset int

	// Limit is the current limit.
	Limit int
}

// Repositories holds all repository instances for one store driver.
type Repositories struct {
	User       UserRepository
	Session    SessionRepository
	Verse      VerseRepository
	Devotional DevotionalRepository
	Prayer     PrayerRepository
}

// StoreHealth is an interface for database health checks and teardown.
type StoreHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
