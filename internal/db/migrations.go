package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// RunMigrations applies all pending migrations to the database named by
// databaseURL and returns the resulting schema version.
func RunMigrations(databaseURL string) (uint, bool, error) {
	m, err := newMigrate(databaseURL)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, false, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}

	return version, dirty, nil
}

func newMigrate(databaseURL string) (*migrate.Migrate, error) {
	var (
		driverName, dir, dsn, dbName string
		newDriver                     func(*sql.DB) (database.Driver, error)
	)

	switch dialectOf(databaseURL) {
	case dialectPostgres:
		driverName, dir, dsn, dbName = "pgx", "migrations/postgres", databaseURL, "pgx5"
		newDriver = func(sqlDB *sql.DB) (database.Driver, error) {
			return migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
		}
	case dialectSQLite:
		path := strings.TrimPrefix(databaseURL, sqliteScheme)
		if path == "" {
			return nil, fmt.Errorf("sqlite database path cannot be empty")
		}
		driverName, dir, dsn, dbName = "sqlite", "migrations/sqlite", path+sqlitePragmas, "sqlite"
		newDriver = func(sqlDB *sql.DB) (database.Driver, error) {
			return migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
		}
	default:
		return nil, unsupportedURL(databaseURL)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, storeErr("connect", fmt.Errorf("failed to open database: %w", err))
	}

	driver, err := newDriver(sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, storeErr("connect", fmt.Errorf("failed to create %s migration driver: %w", dbName, err))
	}

	source, err := iofs.New(migrationFS, dir)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dbName, driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
