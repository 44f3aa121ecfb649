// Package database provides database migration tooling.
package database

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx5:// driver
	_ "github.com/golang-migrate/migrate/v4/database/sqlite" // sqlite:// driver
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var fs embed.FS

// migrationsFromSource returns a migration source driver for the given
// backend's embedded migrations. The SQL differs per dialect (identifier
// generation, timestamp defaults) but the resulting schemas are
// equivalent.
func migrationsFromSource(backend string) (source.Driver, error) {
	return iofs.New(fs, "migrations/"+backend)
}

// Migrator is the interface for the migration tooling.
type Migrator interface {
	Up() error
	Down() error
	Steps(int) error
	Version() (uint, bool, error)
}

// NewFromConnectionString returns a new migration instance for the given
// backend ("postgres" or "sqlite") and connection URL.
func NewFromConnectionString(backend, connString string) (Migrator, error) {
	d, err := migrationsFromSource(backend)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", d, connString)
}
