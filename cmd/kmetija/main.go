package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/erazemk/kmetija/internal/config"
	"github.com/erazemk/kmetija/internal/db"
	"github.com/erazemk/kmetija/internal/inventory"
	"github.com/erazemk/kmetija/internal/logging"
	"github.com/erazemk/kmetija/internal/store"
)

const usage = `Usage: kmetija [flags] <command> [args]

Commands:
  list                          list all items, newest first
  get <id>                      show one item
  search <text>                 items whose name, notes or type contain text
  add-harvest [item flags]      add a harvest lot
  add-equipment [item flags]    add a piece of equipment
  update <id> [item flags]      change an item's fields
  delete <id>                   remove an item
  export <path>                 write all items to a CSV file
  import <path>                 add the items in a CSV file

Item flags:
  -name, -qty, -unit, -date (yyyy-MM-dd), -notes,
  -status and -price (harvest), -condition (equipment)

Flags:
  -d, -db <path>          SQLite database path (default: $KMETIJA_DB_PATH or kmetija.sqlite3)
  -l, -log <path>         log file path (default: $KMETIJA_LOG_FILE, none)
  -h, -help               show this help and exit

Environment (also read from .env):
  KMETIJA_DB_DRIVER       sqlite or postgres
  KMETIJA_DATABASE_URL    PostgreSQL connection URL
  KMETIJA_LOG_LEVEL       debug, info, warn, error
  KMETIJA_LOG_FORMAT      text or json
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("kmetija", flag.ContinueOnError)
	fs.StringVar(&cfg.Database.Path, "db", cfg.Database.Path, "")
	fs.StringVar(&cfg.Database.Path, "d", cfg.Database.Path, "")
	fs.StringVar(&cfg.Logging.File, "log", cfg.Logging.File, "")
	fs.StringVar(&cfg.Logging.File, "l", cfg.Logging.File, "")
	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 1
	}

	closeLog, err := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	database, dialect, err := db.Connect(cfg.Database.Driver, cfg.Database.Source())
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		return 1
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database, dialect); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		return 1
	}
	slog.Debug("database ready", "driver", dialect.Name())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli{
		svc: inventory.NewService(store.NewInventory(database, dialect)),
		out: os.Stdout,
	}
	if err := app.dispatch(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
			fs.Usage()
			return 2
		}
		slog.Error("command failed", "command", fs.Arg(0), "error", err)
		return 1
	}
	return 0
}
