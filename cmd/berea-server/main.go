// Package main is the entry point for the Berea server.
// Berea is a bible-study companion backend: credential and session
// management plus verse memorization, devotionals and prayer requests.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/berea-app/berea/internal/cache/memory"
	"github.com/berea-app/berea/internal/cache/redis"
	"github.com/berea-app/berea/internal/config"
	"github.com/berea-app/berea/internal/handler"
	"github.com/berea-app/berea/internal/metrics"
	"github.com/berea-app/berea/internal/pkg/crypto"
	"github.com/berea-app/berea/internal/repository"
	"github.com/berea-app/berea/internal/repository/factory"
	"github.com/berea-app/berea/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// pruneInterval controls how often expired sessions are swept from the
// store.
const pruneInterval = time.Hour

func main() {
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg := config.MustLoad(configPath)

	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("driver", cfg.Database.Driver).
		Msg("starting berea server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	store, err := factory.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Health.Close()

	// Session cache
	sessionCache, closeCache, err := setupCache(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	// Session signing secret
	secret := cfg.Auth.SessionSecret
	if secret == "" {
		secret, err = crypto.GenerateSecret()
		if err != nil {
			return err
		}
		logger.Warn().Msg("no session secret configured; generated one, existing cookies will not survive restarts")
	}

	// Services
	users := service.NewUserService(store.Repos.User, service.BootstrapIdentity{
		Username: cfg.Auth.BootstrapUsername,
		Password: cfg.Auth.BootstrapPassword,
	}, logger)
	sessions := service.NewSessionService(store.Repos.Session, users, sessionCache, cfg.Auth.SessionTTL, logger)
	verses := service.NewVerseService(store.Repos.Verse, logger)
	devotionals := service.NewDevotionalService(store.Repos.Devotional, logger)
	prayers := service.NewPrayerService(store.Repos.Prayer, logger)

	// HTTP surface
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	router := handler.NewRouter(handler.RouterConfig{
		Auth: handler.NewAuthHandler(handler.AuthHandlerConfig{
			Sessions:     sessions,
			Users:        users,
			Secret:       secret,
			CookieSecure: cfg.Auth.CookieSecure,
			Metrics:      m,
			Logger:       logger,
		}),
		Verses:         handler.NewVerseHandler(verses, logger),
		Devotionals:    handler.NewDevotionalHandler(devotionals, logger),
		Prayers:        handler.NewPrayerHandler(prayers, logger),
		Health:         handler.NewHealthHandler(store.Health, logger),
		AuthMiddleware: handler.NewAuthMiddleware(sessions, secret, m, logger),
		Metrics:        m,
		Logger:         logger,
		RequestTimeout: cfg.Server.WriteTimeout,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Background session pruning
	go pruneLoop(ctx, sessions, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// setupCache returns the configured session cache: Redis when enabled,
// an in-process cache otherwise.
func setupCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (repository.Cache, func(), error) {
	if !cfg.Enabled {
		cache := memory.NewCache()
		return cache, cache.Stop, nil
	}

	cache, err := redis.NewCache(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return cache, func() { _ = cache.Close() }, nil
}

// pruneLoop periodically sweeps expired sessions.
func pruneLoop(ctx context.Context, sessions *service.SessionService, logger zerolog.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sessions.PruneExpired(ctx); err != nil {
				logger.Warn().Err(err).Msg("session pruning failed")
			}
		}
	}
}

// setupLogger builds the root logger from configuration.
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
