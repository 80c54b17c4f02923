package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/metrics"
	"github.com/berea-app/berea/internal/pkg/crypto"
	"github.com/berea-app/berea/internal/service"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "berea_session"

type contextKey string

const (
	userContextKey    contextKey = "user"
	sessionContextKey contextKey = "session"
)

// UserFromContext returns the authenticated user stored by the auth
// middleware, or nil.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// SessionFromContext returns the session stored by the auth middleware,
// or nil.
func SessionFromContext(ctx context.Context) *domain.Session {
	session, _ := ctx.Value(sessionContextKey).(*domain.Session)
	return session
}

// AuthMiddleware resolves the session cookie and stores the session and
// user in the request context. Requests without a valid session get 401.
type AuthMiddleware struct {
	sessions *service.SessionService
	secret   string
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewAuthMiddleware creates an AuthMiddleware. secret verifies the HMAC
// signature on cookie values; m may be nil.
func NewAuthMiddleware(sessions *service.SessionService, secret string, m *metrics.Metrics, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		secret:   secret,
		metrics:  m,
		logger:   logger.With().Str("component", "auth-middleware").Logger(),
	}
}

// RequireAuth rejects requests that do not carry a valid session cookie.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.tokenFromRequest(r)
		if !ok {
			m.metrics.RecordSessionResolution(metrics.OutcomeFailure)
			writeError(w, service.ErrNotAuthenticated)
			return
		}

		session, user, err := m.sessions.Resolve(r.Context(), token)
		if err != nil {
			m.metrics.RecordSessionResolution(metrics.OutcomeFailure)
			writeError(w, err)
			return
		}

		m.metrics.RecordSessionResolution(metrics.OutcomeSuccess)
		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromRequest extracts and verifies the signed session token from
// the cookie. A missing cookie or a bad signature both read as "no
// session".
func (m *AuthMiddleware) tokenFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}

	token, ok := crypto.ParseSignedToken(cookie.Value, m.secret)
	if !ok {
		m.logger.Debug().Msg("session cookie failed signature check")
		return "", false
	}
	return token, true
}
