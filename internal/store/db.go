package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and tunes the backing database.
type Config struct {
	Driver       string
	DSN          string
	QueryTimeout time.Duration
	AutoMigrate  bool
}

// DefaultConfig returns an in-memory sqlite database that migrates itself.
func DefaultConfig() Config {
	return Config{
		Driver:       DriverSQLite,
		DSN:          "file:storefront?mode=memory&cache=shared",
		QueryTimeout: 3 * time.Second,
		AutoMigrate:  true,
	}
}

// Validate checks the store configuration.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return &ConfigError{Field: "Driver", Message: "must be sqlite or postgres"}
	}
	if c.DSN == "" {
		return &ConfigError{Field: "DSN", Message: "is required"}
	}
	if c.QueryTimeout < 0 {
		return &ConfigError{Field: "QueryTimeout", Message: "must not be negative"}
	}
	return nil
}

// ConfigError reports an invalid store setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "store config error in field " + e.Field + ": " + e.Message
}

// DB is the shared database handle.
type DB struct {
	bun          *bun.DB
	driver       string
	dsn          string
	queryTimeout time.Duration
	logger       zerolog.Logger
}

// Open connects to the configured database and, when AutoMigrate is set,
// applies the embedded migrations.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		sqldb *sql.DB
		err   error
		bdb   *bun.DB
	)
	switch cfg.Driver {
	case DriverSQLite:
		sqldb, err = sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite allows one writer; a single connection keeps the
		// read-modify-write transactions in UpdateOne serialized.
		sqldb.SetMaxOpenConns(1)
		bdb = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres:
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		bdb = bun.NewDB(sqldb, pgdialect.New())
	}

	db := &DB{
		bun:          bdb,
		driver:       cfg.Driver,
		dsn:          cfg.DSN,
		queryTimeout: cfg.QueryTimeout,
		logger:       logger,
	}

	// The first connection also keeps a shared in-memory sqlite database
	// alive for the migration connection opened below.
	if err := db.Ping(ctx); err != nil {
		_ = bdb.Close()
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			_ = bdb.Close()
			return nil, err
		}
	}

	logger.Info().Str("driver", cfg.Driver).Msg("store opened")
	return db, nil
}

// Bun exposes the underlying bun handle.
func (db *DB) Bun() *bun.DB { return db.bun }

// Driver reports the configured driver name.
func (db *DB) Driver() string { return db.driver }

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()
	if err := db.bun.PingContext(ctx); err != nil {
		return translate(err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.bun.Close()
}

func (db *DB) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}
