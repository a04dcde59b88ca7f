package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // registers the "sqlite" database/sql driver

	"github.com/sundayezeilo/videorecords/internal/config"
)

//go:embed all:migrations/postgres
var postgresMigrations embed.FS

//go:embed all:migrations/sqlite
var sqliteMigrations embed.FS

// Migrate applies all pending migrations for driver. It opens its own
// connection because closing a golang-migrate instance closes the database
// handle it was built from.
func Migrate(driver, dsn string) error {
	m, err := NewMigrator(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// NewMigrator returns a golang-migrate instance over the embedded migrations.
// For sqlite, dsn is the database file path. The caller must Close it.
func NewMigrator(driver, dsn string) (*migrate.Migrate, error) {
	var (
		sqlDriver string
		files     fs.FS
		err       error
	)

	switch driver {
	case config.DriverPostgres:
		sqlDriver = "pgx"
		files, err = fs.Sub(postgresMigrations, "migrations/postgres")
	case config.DriverSQLite:
		sqlDriver = "sqlite"
		dsn = SQLiteDSN(dsn)
		files, err = fs.Sub(sqliteMigrations, "migrations/sqlite")
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create sub filesystem: %w", err)
	}

	source, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	conn, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var target database.Driver
	switch driver {
	case config.DriverPostgres:
		target, err = migratepostgres.WithInstance(conn, &migratepostgres.Config{})
	case config.DriverSQLite:
		target, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	}
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create %s migration driver: %w", driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}
