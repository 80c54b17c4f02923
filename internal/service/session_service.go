package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/pkg/crypto"
	"github.com/berea-app/berea/internal/repository"
)

// storeRetryLimit bounds retries of transient store failures during
// session operations.
const storeRetryLimit = 3

// SessionService handles the session lifecycle: login, resolution and
// logout. Sessions live in the durable store; the cache is a read-through
// optimization and is never the source of truth.
type SessionService struct {
	sessionRepo repository.SessionRepository
	users       *UserService
	cache       repository.Cache
	cacheKey    repository.CacheKey
	ttl         time.Duration
	logger      zerolog.Logger
}

// NewSessionService creates a new SessionService. cache may be nil when
// no cache is configured.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	users *UserService,
	cache repository.Cache,
	ttl time.Duration,
	logger zerolog.Logger,
) *SessionService {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	return &SessionService{
		sessionRepo: sessionRepo,
		users:       users,
		cache:       cache,
		ttl:         ttl,
		logger:      logger.With().Str("service", "session").Logger(),
	}
}

// LoginInput contains credentials plus request metadata recorded on the
// session.
type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginOutput contains the authenticated user and the created session.
type LoginOutput struct {
	User    *domain.User
	Session *domain.Session
}

// Login verifies credentials and creates a new session.
func (s *SessionService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	user, err := s.users.Authenticate(ctx, input.Username, input.Password)
	if err != nil {
		return nil, err
	}

	token, err := crypto.GenerateSessionToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate session token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	session := domain.NewSession(token, user.ID, s.ttl)
	session.IPAddress = input.IPAddress
	session.UserAgent = input.UserAgent

	err = s.withStoreRetry(ctx, "create session", func() error {
		return s.sessionRepo.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.cacheSession(ctx, session)

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("session created")

	return &LoginOutput{User: user, Session: session}, nil
}

// RegisterAndLoginInput contains registration data plus the request
// metadata recorded on the opened session.
type RegisterAndLoginInput struct {
	Username  string
	Password  string
	Profile   domain.ProfileUpdate
	IPAddress string
	UserAgent string
}

// RegisterAndLogin registers a new user and immediately opens a session
// for them.
func (s *SessionService) RegisterAndLogin(ctx context.Context, input RegisterAndLoginInput) (*LoginOutput, error) {
	if _, err := s.users.Register(ctx, RegisterInput{
		Username: input.Username,
		Password: input.Password,
		Profile:  input.Profile,
	}); err != nil {
		return nil, err
	}
	return s.Login(ctx, LoginInput{
		Username:  input.Username,
		Password:  input.Password,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	})
}

// Resolve maps a session token to its session and user. Expired sessions
// are deleted on sight. A session whose user no longer exists fails
// closed: the session is terminated.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Session, *domain.User, error) {
	session := s.cachedSession(ctx, token)
	if session == nil {
		var err error
		err = s.withStoreRetry(ctx, "get session", func() error {
			var getErr error
			session, getErr = s.sessionRepo.GetByToken(ctx, token)
			return getErr
		})
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return nil, nil, ErrNotAuthenticated
			}
			return nil, nil, err
		}
		s.cacheSession(ctx, session)
	}

	if session.IsExpired() {
		s.dropSession(ctx, token)
		return nil, nil, ErrNotAuthenticated
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Warn().Str("user_id", session.UserID).Msg("session references missing user, terminating")
			s.dropSession(ctx, token)
			return nil, nil, ErrNotAuthenticated
		}
		return nil, nil, err
	}

	return session, user, nil
}

// Logout deletes a session. Unknown tokens are a no-op; logout is
// idempotent.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	err := s.withStoreRetry(ctx, "delete session", func() error {
		return s.sessionRepo.Delete(ctx, token)
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.cacheKey.Session(token)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to evict session from cache")
		}
	}

	s.logger.Info().Msg("session deleted")
	return nil
}

// LogoutAll deletes every session belonging to a user. Cached entries
// expire on their own TTL; the store is authoritative.
func (s *SessionService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	var deleted int64
	err := s.withStoreRetry(ctx, "delete user sessions", func() error {
		var delErr error
		deleted, delErr = s.sessionRepo.DeleteByUserID(ctx, userID)
		return delErr
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().Str("user_id", userID).Int64("deleted", deleted).Msg("user sessions deleted")
	return deleted, nil
}

// PruneExpired removes expired sessions from the store and reports how
// many were deleted.
func (s *SessionService) PruneExpired(ctx context.Context) (int64, error) {
	deleted, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("expired sessions pruned")
	}
	return deleted, nil
}

// cachedSession returns the cached session for a token, or nil on any
// miss or cache failure.
func (s *SessionService) cachedSession(ctx context.Context, token string) *domain.Session {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, s.cacheKey.Session(token))
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn().Err(err).Msg("session cache read failed")
		}
		return nil
	}

	session := &domain.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		s.logger.Warn().Err(err).Msg("dropping undecodable cached session")
		_ = s.cache.Delete(ctx, s.cacheKey.Session(token))
		return nil
	}
	return session
}

// cacheSession writes a session to the cache with a TTL matching its
// remaining lifetime. Cache failures are logged, never surfaced.
func (s *SessionService) cacheSession(ctx context.Context, session *domain.Session) {
	if s.cache == nil {
		return
	}

	ttl := session.TTL()
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(session)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode session for cache")
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey.Session(session.Token), data, ttl); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache session")
	}
}

// dropSession removes a session from both the store and the cache,
// logging failures instead of surfacing them.
func (s *SessionService) dropSession(ctx context.Context, token string) {
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		s.logger.Warn().Err(err).Msg("failed to delete session")
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.cacheKey.Session(token)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to evict session from cache")
		}
	}
}

// withStoreRetry runs op, retrying transient store failures with bounded
// exponential backoff. Exhaustion surfaces as ErrStoreUnavailable;
// permanent failures return immediately.
func (s *SessionService) withStoreRetry(ctx context.Context, opName string, op func() error) error {
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), storeRetryLimit),
		ctx,
	)

	err := backoff.RetryNotify(
		func() error {
			err := op()
			if err != nil && !isTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		},
		bo,
		func(err error, next time.Duration) {
			s.logger.Warn().Err(err).Str("op", opName).Dur("retry_in", next).Msg("transient store failure, retrying")
		},
	)
	if err == nil {
		return nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}

	s.logger.Error().Err(err).Str("op", opName).Msg("store unavailable after retries")
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// isTransient classifies store errors worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe")
}
