package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/rentora/backend/internal/infrastructure/config"
	"github.com/rentora/backend/internal/infrastructure/logger"
	"github.com/rentora/backend/internal/infrastructure/migration"
)

const defaultMigrationsDir = "migrations"

type cliOptions struct {
	migrationsPath string
	command        string
	args           []string
}

func main() {
	var (
		pathFlag string
		logLevel string
	)
	flag.StringVar(&pathFlag, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	opts := cliOptions{
		migrationsPath: resolveMigrationsPath(pathFlag),
		command:        flag.Arg(0),
		args:           flag.Args()[1:],
	}

	log.Info("Migration CLI started",
		zap.String("command", opts.command),
		zap.String("migrations_path", opts.migrationsPath),
	)

	if err := run(opts, log); err != nil {
		log.Fatal("Migration command failed", zap.String("command", opts.command), zap.Error(err))
	}
}

func run(opts cliOptions, log *zap.Logger) error {
	// create and list work on the filesystem alone.
	switch opts.command {
	case "create":
		return runCreate(opts, log)
	case "list":
		return runList(opts, log)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, opts.migrationsPath, log)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	switch opts.command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(opts.args, "step count", "migrate step <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "goto":
		v, err := versionArg(opts.args, "migrate goto <version>")
		if err != nil {
			return err
		}
		return m.GoTo(v)
	case "version":
		return runVersion(m, log)
	case "force":
		v, err := intArg(opts.args, "version", "migrate force <version>")
		if err != nil {
			return err
		}
		log.Warn("Forcing migration version - use with caution!")
		return m.Force(v)
	case "drop":
		return runDrop(m, opts.args, log)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", opts.command)
	}
}

func runCreate(opts cliOptions, log *zap.Logger) error {
	if len(opts.args) == 0 {
		return errors.New("migration name required; usage: migrate create <name> [description]")
	}
	name := opts.args[0]
	description := ""
	if len(opts.args) > 1 {
		description = opts.args[1]
	}

	mf, err := migration.CreateMigration(opts.migrationsPath, name, description)
	if err != nil {
		return err
	}

	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func runList(opts cliOptions, log *zap.Logger) error {
	migrations, err := migration.ListMigrations(opts.migrationsPath)
	if err != nil {
		return err
	}
	if len(migrations) == 0 {
		log.Info("No migrations found")
		return nil
	}
	log.Info("Available migrations", zap.Int("count", len(migrations)))
	for _, m := range migrations {
		fmt.Println("  -", m)
	}
	return nil
}

func runVersion(m *migration.Migrator, log *zap.Logger) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		log.Info("No migrations applied")
		return nil
	}
	log.Info("Current migration version",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

func runDrop(m *migration.Migrator, args []string, log *zap.Logger) error {
	confirmed := false
	for _, arg := range args {
		if arg == "-confirm" || arg == "--confirm" {
			confirmed = true
			break
		}
	}
	if !confirmed {
		return errors.New("drop cancelled; rerun as 'migrate drop -confirm' to drop all database objects")
	}
	log.Warn("Dropping all database objects")
	return m.Drop()
}

// resolveMigrationsPath picks the migrations directory: the -path flag
// when given, then ./migrations, then <executable>/../../migrations.
// The result is absolute when possible.
func resolveMigrationsPath(flagValue string) string {
	path := flagValue
	if path == "" {
		path = defaultMigrationsDir
		if _, err := os.Stat(path); err != nil {
			if execPath, execErr := os.Executable(); execErr == nil {
				candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsDir)
				if _, statErr := os.Stat(candidate); statErr == nil {
					path = candidate
				}
			}
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func intArg(args []string, what, usage string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required; usage: %s", what, usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return n, nil
}

func versionArg(args []string, usage string) (uint, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("version required; usage: %s", usage)
	}
	v, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid version number %q", args[0])
	}
	return uint(v), nil
}

func printUsage() {
	fmt.Println(`Rentora Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  drop -confirm         Drop all database objects (DANGEROUS)
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSL_MODE

Examples:
  # Apply all pending migrations
  migrate up

  # Roll back the last migration
  migrate step -1

  # Create a new migration
  migrate create add_return_tables "Create return transaction tables"

  # Check current version
  migrate version`)
}
