// Package main is the entry point for the Berea admin CLI.
// It provides administrative commands for managing users and sessions
// directly against the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/config"
	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/pkg/crypto"
	"github.com/berea-app/berea/internal/repository"
	"github.com/berea-app/berea/internal/repository/factory"
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
		fmt.Printf("Berea Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		runUser(os.Args[2:])

	case "sessions":
		runSessions(os.Args[2:])

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// openStore connects to the configured store without migrations noise.
func openStore(ctx context.Context) *factory.Store {
	cfg := config.MustLoad(os.Getenv("BEREA_CONFIG"))

	store, err := factory.Open(ctx, cfg.Database, zerolog.New(os.Stderr).Level(zerolog.WarnLevel))
	if err != nil {
		fatalf("failed to open store: %v", err)
	}
	return store
}

func runUser(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "user subcommand required: create, list, set-password")
		os.Exit(1)
	}

	ctx := context.Background()

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		username := fs.String("username", "", "login name (required)")
		password := fs.String("password", "", "initial password (required)")
		fs.Parse(args[1:])

		if *username == "" || *password == "" {
			fatalf("both --username and --password are required")
		}

		store := openStore(ctx)
		defer store.Health.Close()

		hash, err := crypto.HashPassword(*password)
		if err != nil {
			fatalf("failed to hash password: %v", err)
		}

		user := domain.NewUser(uuid.NewString(), *username, hash)
		if err := store.Repos.User.Create(ctx, user); err != nil {
			fatalf("failed to create user: %v", err)
		}
		fmt.Printf("created user %s (%s)\n", user.Username, user.ID)

	case "list":
		store := openStore(ctx)
		defer store.Health.Close()

		result, err := store.Repos.User.List(ctx, repository.ListOptions{Limit: 1000})
		if err != nil {
			fatalf("failed to list users: %v", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tCREATED")
		for _, user := range result.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\n", user.ID, user.Username, user.CreatedAt.Format(time.RFC3339))
		}
		w.Flush()
		fmt.Printf("%d user(s)\n", result.Total)

	case "set-password":
		fs := flag.NewFlagSet("user set-password", flag.ExitOnError)
		username := fs.String("username", "", "login name (required)")
		password := fs.String("password", "", "new password (required)")
		fs.Parse(args[1:])

		if *username == "" || *password == "" {
			fatalf("both --username and --password are required")
		}

		store := openStore(ctx)
		defer store.Health.Close()

		user, err := store.Repos.User.GetByUsername(ctx, *username)
		if err != nil {
			fatalf("failed to find user: %v", err)
		}

		hash, err := crypto.HashPassword(*password)
		if err != nil {
			fatalf("failed to hash password: %v", err)
		}
		user.PasswordHash = hash

		if err := store.Repos.User.Update(ctx, user); err != nil {
			fatalf("failed to update user: %v", err)
		}

		// Force re-login everywhere.
		if _, err := store.Repos.Session.DeleteByUserID(ctx, user.ID); err != nil {
			fatalf("password changed but failed to clear sessions: %v", err)
		}
		fmt.Printf("password updated for %s, all sessions cleared\n", user.Username)

	default:
		fatalf("unknown user subcommand: %s", args[0])
	}
}

func runSessions(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "sessions subcommand required: prune")
		os.Exit(1)
	}

	ctx := context.Background()

	switch args[0] {
	case "prune":
		store := openStore(ctx)
		defer store.Health.Close()

		deleted, err := store.Repos.Session.DeleteExpired(ctx)
		if err != nil {
			fatalf("failed to prune sessions: %v", err)
		}
		fmt.Printf("pruned %d expired session(s)\n", deleted)

	default:
		fatalf("unknown sessions subcommand: %s", args[0])
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`Berea Admin CLI

Usage:
  berea-admin <command> [arguments]

Commands:
  user        Manage users (create, list, set-password)
  sessions    Manage sessions (prune)
  version     Print version information
  help        Show this help message

Environment Variables:
  BEREA_CONFIG           Path to the config file (optional)
  BEREA_DATABASE_DRIVER  Store driver: sqlite, postgres or memory

Examples:
  berea-admin user create --username alice --password secret123
  berea-admin user list
  berea-admin user set-password --username alice --password newsecret
  berea-admin sessions prune`)
}
