package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/asakaida/datastore/internal/infrastructure/config"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Database represents an open SQL connection and the driver behind it
type Database struct {
	DB     *sql.DB
	Driver string
}

// Open opens a connection for the configured driver (postgres, pgx or sqlite)
func Open(cfg *config.DatabaseConfig) (*Database, error) {
	driverName, err := sqlDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// A single writer avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(1 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, Driver: cfg.Driver}, nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "postgres", nil
	case "pgx":
		return "pgx", nil
	case "sqlite":
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported database driver: %q", driver)
}

// RunMigrations applies the embedded migrations for the driver
func (d *Database) RunMigrations() error {
	m, err := d.migrator()
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// RollbackMigrations reverts the given number of migrations, or all of them when steps is not positive
func (d *Database) RollbackMigrations(steps int) error {
	m, err := d.migrator()
	if err != nil {
		return err
	}

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	return nil
}

// MigrationVersion returns the current migration version and dirty flag
func (d *Database) MigrationVersion() (uint, bool, error) {
	m, err := d.migrator()
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}

// MigrateTo migrates up or down to the given version
func (d *Database) MigrateTo(version uint) error {
	m, err := d.migrator()
	if err != nil {
		return err
	}

	if err := m.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate to version %d: %w", version, err)
	}
	return nil
}

// ForceVersion sets the migration version without running migrations and clears the dirty flag
func (d *Database) ForceVersion(version int) error {
	m, err := d.migrator()
	if err != nil {
		return err
	}

	if err := m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

func (d *Database) migrator() (*migrate.Migrate, error) {
	var (
		driver migratedb.Driver
		dir    string
		err    error
	)

	switch d.Driver {
	case "postgres", "pgx":
		dir = "migrations/postgres"
		driver, err = postgres.WithInstance(d.DB, &postgres.Config{})
	case "sqlite":
		dir = "migrations/sqlite"
		driver, err = migratesqlite.WithInstance(d.DB, &migratesqlite.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", d.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, d.Driver, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

// HealthCheck checks if the database connection is healthy
func (d *Database) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
