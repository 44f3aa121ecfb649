// Package database provides a database-backed implementation of the
// CatalogService interface
package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect import
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/trace"

	"github.com/festquest/festquest-server/internal/config"
	"github.com/festquest/festquest-server/internal/service"
)

// goquDialects maps the configured backend to the goqu dialect that
// produces its placeholder style ($n vs ?).
var goquDialects = map[string]string{
	config.BackendPostgres: "postgres",
	config.BackendSQLite:   "sqlite3",
}

// options holds configuration options for the database service
type options struct {
	db      *sqlx.DB
	backend string
	tracer  trace.Tracer
}

// Option is a functional option for configuring the database service
type Option func(*options) error

// WithDB sets the database handle. The caller is responsible for closing
// it when done.
func WithDB(db *sqlx.DB) Option {
	return func(o *options) error {
		if db == nil {
			return fmt.Errorf("database handle is required")
		}
		o.db = db
		return nil
	}
}

// WithBackend selects the SQL dialect used to build queries. The backend
// is fixed at construction time; no query site branches on environment
// detection.
func WithBackend(backend string) Option {
	return func(o *options) error {
		if _, ok := goquDialects[backend]; !ok {
			return fmt.Errorf("unsupported database backend: %s", backend)
		}
		o.backend = backend
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer for the database service.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// dbService implements the CatalogService interface using a relational
// database backend
type dbService struct {
	db      *sqlx.DB
	backend string
	builder goqu.DialectWrapper
	tracer  trace.Tracer
}

var _ service.CatalogService = (*dbService)(nil)

// New creates a new database-backed catalog service with the given options
func New(opts ...Option) (service.CatalogService, error) {
	o := &options{}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if o.backend == "" {
		return nil, fmt.Errorf("database backend is required")
	}

	return &dbService{
		db:      o.db,
		backend: o.backend,
		builder: goqu.Dialect(goquDialects[o.backend]),
		tracer:  o.tracer,
	}, nil
}

// CheckReadiness checks if the service is ready to serve requests
func (s *dbService) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
