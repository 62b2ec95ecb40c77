package db_postgresql

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gardenrating/infra/database"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// NewConnection opens the rating history database and applies pending
// migrations from db/migration.
func NewConnection(config *database.Config) (*sql.DB, error) {
	db, err := sql.Open(config.Driver, config.DSN())
	if err != nil {
		return nil, errConnection(config.Environment, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errConnection(config.Environment, err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, errConnection(config.Environment, err)
	}

	return db, nil
}

func errConnection(environment string, err error) error {
	return fmt.Errorf("failed to connect %s postgres database: %w", environment, err)
}

func runMigrations(conn *sql.DB) error {
	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	pwd, err := os.Getwd()
	if err != nil {
		return err
	}
	migrationsPath := filepath.Join(pwd, "db/migration")

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
