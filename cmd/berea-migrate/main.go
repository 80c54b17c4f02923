// Package main is the entry point for the Berea database migration tool.
// It applies the embedded schema migrations for the SQLite and
// PostgreSQL drivers.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/config"
	"github.com/berea-app/berea/internal/repository/postgres"
	"github.com/berea-app/berea/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Berea Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		withMigrator(func(ctx context.Context, m migrator) {
			if err := m.Migrate(ctx); err != nil {
				fatalf("migration failed: %v", err)
			}
			version, err := m.MigrationVersion(ctx)
			if err != nil {
				fatalf("failed to read version: %v", err)
			}
			fmt.Printf("migrated to version %d\n", version)
		})

	case "status":
		withMigrator(func(ctx context.Context, m migrator) {
			version, err := m.MigrationVersion(ctx)
			if err != nil {
				fatalf("failed to read version: %v", err)
			}
			fmt.Printf("current schema version: %d\n", version)
		})

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// migrator is implemented by both database drivers.
type migrator interface {
	Migrate(ctx context.Context) error
	MigrationVersion(ctx context.Context) (int, error)
	Close() error
}

// withMigrator opens the configured driver and hands it to fn.
func withMigrator(fn func(context.Context, migrator)) {
	cfg := config.MustLoad(os.Getenv("BEREA_CONFIG"))
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	ctx := context.Background()

	var (
		m   migrator
		err error
	)
	switch cfg.Database.Driver {
	case "sqlite":
		m, err = sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
	case "postgres":
		m, err = postgres.NewDB(ctx, cfg.Database, logger)
	case "memory":
		fatalf("the memory driver has no schema to migrate")
	default:
		fatalf("unsupported database driver: %s", cfg.Database.Driver)
	}
	if err != nil {
		fatalf("failed to open database: %v", err)
	}
	defer m.Close()

	fn(ctx, m)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`Berea Migration Tool

Usage:
  berea-migrate <command>

Commands:
  up          Apply all pending migrations
  status      Show the current schema version
  version     Print version information
  help        Show this help message

Environment Variables:
  BEREA_CONFIG           Path to the config file (optional)
  BEREA_DATABASE_DRIVER  Store driver: sqlite or postgres
  BEREA_DATABASE_PATH    SQLite database path

Examples:
  berea-migrate up
  berea-migrate status`)
}
