// Package factory wires concrete repository drivers from configuration.
// It is the only place that knows about all three store drivers; callers
// work against the repository interfaces.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/config"
	"github.com/berea-app/berea/internal/repository"
	"github.com/berea-app/berea/internal/repository/memory"
	"github.com/berea-app/berea/internal/repository/postgres"
	"github.com/berea-app/berea/internal/repository/sqlite"
)

// Store bundles the repository set with the handle needed for health
// checks and shutdown.
type Store struct {
	Repos  repository.Repositories
	Health repository.StoreHealth
	Driver string
}

// Open connects to the store named by cfg.Driver, runs pending migrations
// and returns the full repository set.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return openSQLite(ctx, cfg, logger)
	case "postgres":
		return openPostgres(ctx, cfg, logger)
	case "memory":
		return openMemory(logger)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func openSQLite(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	dbCfg := sqlite.DefaultConfig(cfg.Path)
	if cfg.JournalMode != "" {
		dbCfg.JournalMode = cfg.JournalMode
	}
	if cfg.BusyTimeout > 0 {
		dbCfg.BusyTimeout = cfg.BusyTimeout
	}
	if cfg.CacheSize != 0 {
		dbCfg.CacheSize = cfg.CacheSize
	}
	if cfg.SynchronousMode != "" {
		dbCfg.SynchronousMode = cfg.SynchronousMode
	}

	db, err := sqlite.NewDB(ctx, dbCfg, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite migration failed: %w", err)
	}

	return &Store{
		Repos: repository.Repositories{
			User:       sqlite.NewUserRepository(db),
			Session:    sqlite.NewSessionRepository(db),
			Verse:      sqlite.NewVerseRepository(db),
			Devotional: sqlite.NewDevotionalRepository(db),
			Prayer:     sqlite.NewPrayerRepository(db),
		},
		Health: db,
		Driver: cfg.Driver,
	}, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	db, err := postgres.NewDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres migration failed: %w", err)
	}

	return &Store{
		Repos: repository.Repositories{
			User:       postgres.NewUserRepository(db),
			Session:    postgres.NewSessionRepository(db),
			Verse:      postgres.NewVerseRepository(db),
			Devotional: postgres.NewDevotionalRepository(db),
			Prayer:     postgres.NewPrayerRepository(db),
		},
		Health: db,
		Driver: cfg.Driver,
	}, nil
}

func openMemory(logger zerolog.Logger) (*Store, error) {
	logger.Warn().Msg("using in-memory store; data will not survive restarts")

	store := memory.NewStore()
	return &Store{
		Repos:  store.Repositories(),
		Health: store,
		Driver: "memory",
	}, nil
}
