// Package migration applies the versioned SQL schema under migrations/ to a
// PostgreSQL database and scaffolds new migration pairs.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/flowi/backend/migrations"
)

// Migrator runs schema migrations for the ledger database
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// Options selects where migration files are read from.
// An empty Dir uses the schema embedded in the binary.
type Options struct {
	Dir string
}

// New creates a Migrator over an open PostgreSQL connection
func New(db *sql.DB, opts Options, logger *zap.Logger) (*Migrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create postgres migration driver: %w", err)
	}

	var m *migrate.Migrate
	if opts.Dir != "" {
		m, err = migrate.NewWithDatabaseInstance("file://"+opts.Dir, "postgres", driver)
	} else {
		var src source.Driver
		src, err = embeddedSource(migrations.FS)
		if err == nil {
			m, err = migrate.NewWithInstance("iofs", src, "postgres", driver)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	return &Migrator{migrate: m, logger: logger.Named("migration")}, nil
}

func embeddedSource(fsys fs.FS) (source.Driver, error) {
	return iofs.New(fsys, ".")
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	m.logger.Info("applying pending migrations")
	return m.finish("up", m.migrate.Up())
}

// Down reverts every applied migration
func (m *Migrator) Down() error {
	m.logger.Warn("reverting all migrations")
	return m.finish("down", m.migrate.Down())
}

// Steps moves n migrations forward, or back when n is negative
func (m *Migrator) Steps(n int) error {
	m.logger.Info("stepping migrations", zap.Int("steps", n))
	return m.finish("steps", m.migrate.Steps(n))
}

// GoTo migrates up or down to the given version
func (m *Migrator) GoTo(version uint) error {
	m.logger.Info("migrating to version", zap.Uint("target", version))
	return m.finish("goto", m.migrate.Migrate(version))
}

// Version reports the applied version. A database with no migrations
// reports version 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied without running anything. It is used to
// clear the dirty flag after a failed migration has been repaired by hand.
func (m *Migrator) Force(version int) error {
	m.logger.Warn("forcing migration version", zap.Int("version", version))
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every table in the database, including ones it did not create
func (m *Migrator) Drop() error {
	m.logger.Warn("dropping database objects")
	if err := m.migrate.Drop(); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	return nil
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	return errors.Join(srcErr, dbErr)
}

func (m *Migrator) finish(op string, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("schema already current", zap.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s: %w", op, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil {
		return verr
	}
	m.logger.Info("migration finished",
		zap.String("op", op),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
