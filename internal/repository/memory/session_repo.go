package memory

import (
	"context"
	"time"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

type sessionRepository struct {
	store *Store
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clone := *session
	r.store.sessions[session.Token] = &clone
	return nil
}

func (r *sessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	session, ok := r.store.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.sessions, token)
	return nil
}

func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int64
	for token, session := range r.store.sessions {
		if session.UserID == userID {
			delete(r.store.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	var deleted int64
	for token, session := range r.store.sessions {
		if !session.ExpiresAt.After(now) {
			delete(r.store.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

var _ repository.SessionRepository = (*sessionRepository)(nil)
