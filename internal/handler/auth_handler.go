package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/metrics"
	"github.com/berea-app/berea/internal/pkg/crypto"
	"github.com/berea-app/berea/internal/service"
)

// AuthHandler serves registration, login, logout and the current-user
// endpoints.
type AuthHandler struct {
	sessions     *service.SessionService
	users        *service.UserService
	secret       string
	cookieSecure bool
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// AuthHandlerConfig contains the dependencies for AuthHandler.
type AuthHandlerConfig struct {
	Sessions *service.SessionService
	Users    *service.UserService

	// Secret signs session cookie values.
	Secret string

	// CookieSecure forces the Secure attribute even on plain HTTP,
	// for deployments behind a TLS-terminating proxy.
	CookieSecure bool

	// Metrics counts auth outcomes. May be nil.
	Metrics *metrics.Metrics

	Logger zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		sessions:     cfg.Sessions,
		users:        cfg.Users,
		secret:       cfg.Secret,
		cookieSecure: cfg.CookieSecure,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger.With().Str("handler", "auth").Logger(),
	}
}

// credentialsRequest is the request body for login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// profileRequest carries the optional profile fields, shared by register
// and PATCH /api/user. Absent fields are left untouched.
type profileRequest struct {
	ConversionAge *int       `json:"conversionAge,omitempty"`
	BaptismDate   *time.Time `json:"baptismDate,omitempty"`
	Theme         *string    `json:"theme,omitempty"`
	Language      *string    `json:"language,omitempty"`
	PixKey        *string    `json:"pixKey,omitempty"`
}

// toUpdate converts the request fields to a domain ProfileUpdate.
func (p profileRequest) toUpdate() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		ConversionAge: p.ConversionAge,
		BaptismDate:   p.BaptismDate,
		Theme:         p.Theme,
		Language:      p.Language,
		PixKey:        p.PixKey,
	}
}

// registerRequest is the request body for register: credentials plus any
// initial profile fields, set on the new account.
type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	profileRequest
}

// Register handles POST /api/register. Registration implies login: the
// response carries a fresh session cookie.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.sessions.RegisterAndLogin(r.Context(), service.RegisterAndLoginInput{
		Username:  req.Username,
		Password:  req.Password,
		Profile:   req.toUpdate(),
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.metrics.RecordRegistration(metrics.OutcomeFailure)
		writeError(w, err)
		return
	}

	h.metrics.RecordRegistration(metrics.OutcomeSuccess)
	h.setSessionCookie(w, r, out.Session)
	writeJSON(w, http.StatusCreated, out.User)
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.sessions.Login(r.Context(), service.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.metrics.RecordLogin(metrics.OutcomeFailure)
		writeError(w, err)
		return
	}

	h.metrics.RecordLogin(metrics.OutcomeSuccess)
	h.setSessionCookie(w, r, out.Session)
	writeJSON(w, http.StatusOK, out.User)
}

// Logout handles POST /api/logout. Logout is idempotent: a missing or
// invalid cookie still gets 200 and a cleared cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if token, ok := crypto.ParseSignedToken(cookie.Value, h.secret); ok {
			if err := h.sessions.Logout(r.Context(), token); err != nil {
				writeError(w, err)
				return
			}
		}
	}

	h.clearSessionCookie(w, r)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// CurrentUser handles GET /api/user.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, service.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/user.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, service.ErrNotAuthenticated)
		return
	}

	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, req.toUpdate())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// setSessionCookie writes the signed session cookie. MaxAge tracks the
// session's remaining lifetime; Secure is set when the request arrived
// over TLS or the deployment forces it.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, session *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    crypto.SignToken(session.Token, h.secret),
		Path:     "/",
		MaxAge:   int(session.TTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil || h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil || h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
