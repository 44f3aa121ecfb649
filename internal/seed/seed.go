package seed

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"

	"github.com/festquest/festquest-server/internal/config"
)

var goquDialects = map[string]string{
	config.BackendPostgres: "postgres",
	config.BackendSQLite:   "sqlite3",
}

// Seeder loads reference data into the catalog database.
type Seeder struct {
	db      *sqlx.DB
	backend string
	builder goqu.DialectWrapper
}

// New creates a Seeder for the given connection and backend.
func New(db *sqlx.DB, backend string) (*Seeder, error) {
	dialect, ok := goquDialects[backend]
	if !ok {
		return nil, fmt.Errorf("unsupported database backend: %s", backend)
	}

	return &Seeder{
		db:      db,
		backend: backend,
		builder: goqu.Dialect(dialect),
	}, nil
}
