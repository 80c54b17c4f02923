package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/metrics"
)

// RouterConfig contains everything the router needs.
type RouterConfig struct {
	Auth        *AuthHandler
	Verses      *VerseHandler
	Devotionals *DevotionalHandler
	Prayers     *PrayerHandler
	Health      *HealthHandler

	AuthMiddleware *AuthMiddleware
	Metrics        *metrics.Metrics
	Logger         zerolog.Logger

	// RequestTimeout bounds request handling. Zero disables the timeout.
	RequestTimeout time.Duration
}

// NewRouter builds the chi router with the full middleware stack and all
// routes.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", cfg.Health.Liveness)
		r.Get("/ready", cfg.Health.Readiness)
	})

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)
		r.Post("/logout", cfg.Auth.Logout)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthMiddleware.RequireAuth)

			r.Get("/user", cfg.Auth.CurrentUser)
			r.Patch("/user", cfg.Auth.UpdateProfile)

			r.Route("/verses", func(r chi.Router) {
				r.Get("/", cfg.Verses.List)
				r.Post("/", cfg.Verses.Create)
				r.Patch("/{id}", cfg.Verses.Update)
			})

			r.Route("/devotionals", func(r chi.Router) {
				r.Get("/", cfg.Devotionals.List)
				r.Post("/", cfg.Devotionals.Create)
			})

			r.Route("/prayers", func(r chi.Router) {
				r.Get("/", cfg.Prayers.List)
				r.Post("/", cfg.Prayers.Create)
				r.Patch("/{id}", cfg.Prayers.Update)
			})
		})
	})

	return r
}

// requestLogger logs completed requests. Health probes log at debug to
// keep the noise down.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			event := logger.Info()
			if r.URL.Path == "/health" || r.URL.Path == "/health/ready" {
				event = logger.Debug()
			}
			event.
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}
