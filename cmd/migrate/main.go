package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/flowi/backend/internal/infrastructure/config"
	"github.com/flowi/backend/internal/infrastructure/logger"
	"github.com/flowi/backend/internal/infrastructure/migration"
	"github.com/flowi/backend/migrations"
)

const defaultCreateDir = "migrations"

func main() {
	var (
		dir      string
		logLevel string
	)
	flag.StringVar(&dir, "path", "", "read migrations from this directory instead of the embedded schema")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "15:04:05",
		Service:    "flowi-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("usage: migrate create <name> [description]")
		}
		target := dir
		if target == "" {
			target = defaultCreateDir
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(target, args[1], description, time.Now())
		if err != nil {
			log.Fatal("create migration", zap.Error(err))
		}
		log.Info("migration created",
			zap.Uint("version", mf.Version),
			zap.String("up", mf.UpPath),
			zap.String("down", mf.DownPath),
		)
		return

	case "list":
		list, err := listFrom(dir, migrations.FS)
		if err != nil {
			log.Fatal("list migrations", zap.Error(err))
		}
		for _, m := range list {
			down := ""
			if !m.HasDown {
				down = "  (no down file)"
			}
			fmt.Printf("%0*d  %s%s\n", migration.VersionWidth, m.Version, m.Name, down)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatal("versioned migrations require the postgres driver; sqlite databases are migrated on server start",
			zap.String("driver", cfg.Database.Driver))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("ping database", zap.Error(err))
	}

	m, err := migration.New(db, migration.Options{Dir: dir}, log)
	if err != nil {
		log.Fatal("create migrator", zap.Error(err))
	}
	defer func() { _ = m.Close() }()

	if err := run(m, command, args[1:], log); err != nil {
		log.Fatal("migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func run(m *migration.Migrator, command string, rest []string, log *zap.Logger) error {
	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(rest, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "goto":
		n, err := intArg(rest, "version")
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("version must not be negative")
		}
		return m.GoTo(uint(n))
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("current schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	case "force":
		n, err := intArg(rest, "version")
		if err != nil {
			return err
		}
		return m.Force(n)
	case "drop":
		if !slices.Contains(rest, "-confirm") && !slices.Contains(rest, "--confirm") {
			return fmt.Errorf("drop destroys every table; rerun as 'migrate drop -confirm'")
		}
		return m.Drop()
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func listFrom(dir string, embedded fs.FS) ([]migration.MigrationInfo, error) {
	if dir != "" {
		return migration.ListMigrations(os.DirFS(dir))
	}
	return migration.ListMigrations(embedded)
}

func intArg(rest []string, what string) (int, error) {
	if len(rest) == 0 {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(rest[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, rest[0])
	}
	return n, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `flowi schema migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    apply all pending migrations
  down                  revert all migrations
  step <n>              apply n migrations, negative n reverts
  goto <version>        migrate to the given version
  version               print the applied version
  force <version>       mark a version as applied without running it
  drop -confirm         drop every table in the database
  create <name> [desc]  scaffold the next migration pair
  list                  list known migrations

Flags:
  -path string          migrations directory (default: schema embedded in the binary)
  -log-level string     debug, info, warn or error (default: info)

The database is configured through config.toml, .env or FLOWI_DATABASE_* variables.`)
}
