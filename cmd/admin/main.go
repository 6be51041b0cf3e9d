package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"pricetrack/internal/domain/item"
	"pricetrack/internal/domain/user"
	"pricetrack/internal/infrastructure/store"
	"pricetrack/internal/shared/config"
	"pricetrack/internal/shared/logger"
)

const usage = `pricetrack Admin CLI - Management commands for the pricetrack API

Usage:
  admin <command> [options]

Commands:
  migrate       Apply pending PostgreSQL schema migrations
  list-users    List all users
  list-items    List the items recorded by one or more users

Examples:
  # Bring the PostgreSQL schema up to date
  admin migrate

  # List every user with their ids
  admin list-users

  # List items of a user
  admin list-items --user-id=6650c1f2a8e4b5d3c2f1e0a9

  # List items of several users with a timeout
  admin list-items --user-id=id1,id2 --timeout=30s
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	command := os.Args[1]

	var err error
	switch command {
	case "migrate":
		err = runMigrate(os.Args[2:])
	case "list-users":
		err = runListUsers(os.Args[2:])
	case "list-items":
		err = runListItems(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage + "\n")
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	log, err := logger.New("pricetrack-admin", cfg.Log.Level)
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)
	defer log.Sync()

	if cfg.Store.Driver != config.StorePostgres {
		log.Warn("STORE_DRIVER is not postgres, migrating the postgres database anyway",
			zap.String("driver", cfg.Store.Driver))
	}

	s, db, err := store.OpenPostgres(cfg.Database, log)
	if err != nil {
		return err
	}
	defer s.Close(context.Background())

	start := time.Now()
	version, err := db.Migrate()
	if err != nil {
		return err
	}

	log.Info("Migrations applied", zap.Uint("version", version), zap.Duration("elapsed", time.Since(start)))
	fmt.Printf("Schema at version %d\n", version)
	return nil
}

func runListUsers(args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ExitOnError)
	timeout := fs.Duration("timeout", time.Minute, "Timeout for the operation (e.g., 30s, 5m)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	s, log, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer s.Close(context.Background())

	users, err := user.NewService(s.Users, log).List(ctx)
	if err != nil {
		return err
	}

	printUsers(os.Stdout, users)
	return nil
}

func runListItems(args []string) error {
	fs := flag.NewFlagSet("list-items", flag.ExitOnError)
	userIDStr := fs.String("user-id", "", "User ID(s) whose items to list (comma-separated for multiple)")
	timeout := fs.Duration("timeout", time.Minute, "Timeout for the operation (e.g., 30s, 5m)")

	fs.Usage = func() {
		fmt.Println("Usage: admin list-items [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	userIDs := splitIDs(*userIDStr)
	if len(userIDs) == 0 {
		fs.Usage()
		return fmt.Errorf("must specify --user-id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	s, log, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer s.Close(context.Background())

	// Listing never completes anything, so no completer or publisher is needed.
	items := item.NewService(s.Items, nil, nil, nil, log)
	for _, id := range userIDs {
		list, err := items.ListForUser(ctx, id)
		if err != nil {
			return err
		}
		printItems(os.Stdout, id, list)
	}
	return nil
}

func openStore(ctx context.Context) (*store.Store, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)

	s, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return s, log, nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func printUsers(w io.Writer, users []*user.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Username, u.CreatedAt.UTC().Format(time.RFC3339))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d user(s)\n", len(users))
}

func printItems(w io.Writer, userID string, items []*item.Item) {
	fmt.Fprintf(w, "\n=== User %s ===\n", userID)
	if len(items) == 0 {
		fmt.Fprintln(w, "  no items")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCOST\tDESCRIPTION\tURL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Date.UTC().Format(time.DateOnly), it.Cost.StringFixed(2), it.Description, it.URL)
	}
	tw.Flush()
}
