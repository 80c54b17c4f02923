package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

// MockSessionRepository is a mock implementation of repository.SessionRepository.
type MockSessionRepository struct {
	sessions  map[string]*domain.Session
	createErr error
	getErr    error
	deleteErr error
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.sessions[session.Token] = session
	return nil
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if session, exists := m.sessions[token]; exists {
		return session, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.sessions, token)
	return nil
}

func (m *MockSessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	var deleted int64
	for token, session := range m.sessions {
		if session.UserID == userID {
			delete(m.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	var deleted int64
	for token, session := range m.sessions {
		if !session.ExpiresAt.After(now) {
			delete(m.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

// MockCache is an in-test repository.Cache that records hits and misses.
type MockCache struct {
	items map[string][]byte
	gets  int
	hits  int
}

func NewMockCache() *MockCache {
	return &MockCache{items: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.gets++
	if value, exists := m.items[key]; exists {
		m.hits++
		return value, nil
	}
	return nil, repository.ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.items[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	delete(m.items, key)
	return nil
}

func (m *MockCache) Exists(ctx context.Context, key string) (bool, error) {
	_, exists := m.items[key]
	return exists, nil
}

func (m *MockCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	if _, exists := m.items[key]; !exists {
		return -1, nil
	}
	return time.Hour, nil
}

type sessionFixture struct {
	userRepo    *MockUserRepository
	sessionRepo *MockSessionRepository
	cache       *MockCache
	users       *UserService
	sessions    *SessionService
}

func newSessionFixture(t *testing.T, cache repository.Cache) *sessionFixture {
	t.Helper()

	userRepo := NewMockUserRepository()
	sessionRepo := NewMockSessionRepository()
	users := NewUserService(userRepo, BootstrapIdentity{}, zerolog.Nop())
	sessions := NewSessionService(sessionRepo, users, cache, domain.DefaultSessionTTL, zerolog.Nop())

	f := &sessionFixture{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		users:       users,
		sessions:    sessions,
	}
	if mc, ok := cache.(*MockCache); ok {
		f.cache = mc
	}

	if _, err := users.Register(context.Background(), RegisterInput{Username: "alice", Password: "hunter2!"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return f
}

// =============================================================================
// Tests
// =============================================================================

func TestSessionService_Login(t *testing.T) {
	f := newSessionFixture(t, nil)

	out, err := f.sessions.Login(context.Background(), LoginInput{
		Username:  "alice",
		Password:  "hunter2!",
		IPAddress: "192.0.2.7",
		UserAgent: "test-agent",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Session.Token == "" {
		t.Error("expected session token")
	}
	if out.Session.UserID != out.User.ID {
		t.Errorf("session user %s does not match %s", out.Session.UserID, out.User.ID)
	}
	if out.Session.IPAddress != "192.0.2.7" || out.Session.UserAgent != "test-agent" {
		t.Error("request metadata not recorded on session")
	}

	ttl := time.Until(out.Session.ExpiresAt)
	if ttl < 23*time.Hour || ttl > 24*time.Hour {
		t.Errorf("expected ~24h expiry, got %v", ttl)
	}

	if _, exists := f.sessionRepo.sessions[out.Session.Token]; !exists {
		t.Error("session not persisted to store")
	}

	t.Run("wrong password creates no session", func(t *testing.T) {
		before := len(f.sessionRepo.sessions)
		_, err := f.sessions.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if len(f.sessionRepo.sessions) != before {
			t.Error("failed login must not create a session")
		}
	})

	t.Run("distinct tokens per login", func(t *testing.T) {
		out2, err := f.sessions.Login(context.Background(), LoginInput{Username: "alice", Password: "hunter2!"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out2.Session.Token == out.Session.Token {
			t.Error("expected a fresh token per login")
		}
	})
}

func TestSessionService_Resolve(t *testing.T) {
	f := newSessionFixture(t, nil)

	out, err := f.sessions.Login(context.Background(), LoginInput{Username: "alice", Password: "hunter2!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	session, user, err := f.sessions.Resolve(context.Background(), out.Session.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Token != out.Session.Token {
		t.Error("resolved wrong session")
	}
	if user.Username != "alice" {
		t.Errorf("expected alice, got %s", user.Username)
	}

	t.Run("unknown token", func(t *testing.T) {
		_, _, err := f.sessions.Resolve(context.Background(), "no-such-token")
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("expired session is deleted on sight", func(t *testing.T) {
		expired := domain.NewSession("expired-token", user.ID, -time.Minute)
		f.sessionRepo.sessions[expired.Token] = expired

		_, _, err := f.sessions.Resolve(context.Background(), expired.Token)
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if _, exists := f.sessionRepo.sessions[expired.Token]; exists {
			t.Error("expired session should have been deleted")
		}
	})

	t.Run("missing user fails closed", func(t *testing.T) {
		delete(f.userRepo.users, user.ID)

		_, _, err := f.sessions.Resolve(context.Background(), out.Session.Token)
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if _, exists := f.sessionRepo.sessions[out.Session.Token]; exists {
			t.Error("orphaned session should have been terminated")
		}
	})
}

func TestSessionService_Logout(t *testing.T) {
	f := newSessionFixture(t, nil)

	out, err := f.sessions.Login(context.Background(), LoginInput{Username: "alice", Password: "hunter2!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := f.sessions.Logout(context.Background(), out.Session.Token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = f.sessions.Resolve(context.Background(), out.Session.Token)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated after logout, got %v", err)
	}

	// Logout is idempotent.
	if err := f.sessions.Logout(context.Background(), out.Session.Token); err != nil {
		t.Errorf("repeated logout should succeed, got %v", err)
	}
}

func TestSessionService_CacheReadThrough(t *testing.T) {
	cache := NewMockCache()
	f := newSessionFixture(t, cache)

	out, err := f.sessions.Login(context.Background(), LoginInput{Username: "alice", Password: "hunter2!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Login writes through to the cache.
	key := repository.CacheKey{}.Session(out.Session.Token)
	if _, exists := cache.items[key]; !exists {
		t.Fatal("login should write the session to the cache")
	}

	// A resolve after evicting the store entry still succeeds from cache.
	delete(f.sessionRepo.sessions, out.Session.Token)
	_, user, err := f.sessions.Resolve(context.Background(), out.Session.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("expected alice, got %s", user.Username)
	}
	if cache.hits == 0 {
		t.Error("expected a cache hit")
	}

	// Logout evicts the cache entry.
	if err := f.sessions.Logout(context.Background(), out.Session.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, exists := cache.items[key]; exists {
		t.Error("logout should evict the cached session")
	}
}

func TestSessionService_StoreRetryExhaustion(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.sessionRepo.createErr = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

	_, err := f.sessions.Login(context.Background(), LoginInput{Username: "alice", Password: "hunter2!"})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestSessionService_PermanentStoreErrorNotRetried(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.sessionRepo.getErr = domain.ErrSessionNotFound

	start := time.Now()
	_, _, err := f.sessions.Resolve(context.Background(), "whatever")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("not-found should fail fast, took %v", elapsed)
	}
}

func TestSessionService_PruneExpired(t *testing.T) {
	f := newSessionFixture(t, nil)

	f.sessionRepo.sessions["live"] = domain.NewSession("live", "u1", time.Hour)
	f.sessionRepo.sessions["dead-1"] = domain.NewSession("dead-1", "u1", -time.Minute)
	f.sessionRepo.sessions["dead-2"] = domain.NewSession("dead-2", "u2", -time.Hour)

	deleted, err := f.sessions.PruneExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 pruned, got %d", deleted)
	}
	if _, exists := f.sessionRepo.sessions["live"]; !exists {
		t.Error("live session should survive pruning")
	}
}
