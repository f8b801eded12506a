package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Migrate applies every pending migration for the database's dialect. It runs
// on its own connection because the migration driver closes it when done.
func Migrate(db *DB) error {
	driverName := "sqlite3"
	if db.driver == DriverPostgres {
		driverName = "postgres"
	}

	sqldb, err := sql.Open(driverName, db.dsn)
	if err != nil {
		return fmt.Errorf("migrate: open: %w", err)
	}

	var target database.Driver
	switch db.driver {
	case DriverPostgres:
		target, err = postgres.WithInstance(sqldb, &postgres.Config{})
	default:
		target, err = sqlite3.WithInstance(sqldb, &sqlite3.Config{})
	}
	if err != nil {
		_ = sqldb.Close()
		return fmt.Errorf("migrate: %s driver: %w", db.driver, err)
	}

	src, err := iofs.New(migrations, "migrations/"+db.driver)
	if err != nil {
		_ = target.Close()
		return fmt.Errorf("migrate: source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, target)
	if err != nil {
		_ = src.Close()
		_ = target.Close()
		return fmt.Errorf("migrate: init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: up: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		db.logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("store migrated")
	}
	return nil
}
