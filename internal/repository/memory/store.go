// Package memory provides in-memory repository implementations.
// The memory driver backs the development configuration and the handler
// and service tests; nothing survives a process restart.
package memory

import (
	"context"
	"sync"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

// Store holds all in-memory tables behind a single lock.
type Store struct {
	mu          sync.RWMutex
	users       map[string]*domain.User
	sessions    map[string]*domain.Session
	verses      map[string]*domain.Verse
	devotionals map[string]*domain.Devotional
	prayers     map[string]*domain.Prayer
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:       make(map[string]*domain.User),
		sessions:    make(map[string]*domain.Session),
		verses:      make(map[string]*domain.Verse),
		devotionals: make(map[string]*domain.Devotional),
		prayers:     make(map[string]*domain.Prayer),
	}
}

// Repositories returns the full repository set backed by this store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		User:       &userRepository{store: s},
		Session:    &sessionRepository{store: s},
		Verse:      &verseRepository{store: s},
		Devotional: &devotionalRepository{store: s},
		Prayer:     &prayerRepository{store: s},
	}
}

// Ping always succeeds; there is no connection to check.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// Ensure Store implements repository.StoreHealth.
var _ repository.StoreHealth = (*Store)(nil)
