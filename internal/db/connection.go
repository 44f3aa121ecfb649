// Package db contains code for connecting to the database.
package db

import (
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/festquest/festquest-server/internal/config"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultSSLMode         = "require"
	defaultConnectTimeout  = 10 * time.Second
)

// Connection wraps the database handle together with the backend it was
// opened for. The backend is fixed at startup; no query site branches on
// environment detection.
type Connection struct {
	DB      *sqlx.DB
	Backend string
}

// NewConnection opens a database connection for the configured backend
func NewConnection(cfg *config.DatabaseConfig) (*Connection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	switch cfg.Backend {
	case config.BackendPostgres:
		return openPostgres(cfg.Postgres)
	case config.BackendSQLite:
		return openSQLite(cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported database backend: %s", cfg.Backend)
	}
}

// openPostgres opens a pooled connection using the pgx stdlib driver
func openPostgres(cfg *config.PostgresConfig) (*Connection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postgres configuration is required")
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns == 0 {
		maxOpenConns = defaultMaxOpenConns
	}

	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = defaultMaxIdleConns
	}

	connMaxLifetime := defaultConnMaxLifetime
	if cfg.ConnMaxLifetime != "" {
		duration, err := time.ParseDuration(cfg.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("invalid connection max lifetime: %w", err)
		}
		connMaxLifetime = duration
	}

	password, err := cfg.GetPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to get database password: %w", err)
	}

	// Note: password is not URL-escaped here because the pgx driver
	// handles key=value DSNs directly
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		cfg.Host,
		cfg.Port,
		cfg.User,
		password,
		cfg.Database,
		sslMode,
		int(defaultConnectTimeout.Seconds()),
	)

	sqlxDB, err := sqlx.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlxDB.SetMaxOpenConns(maxOpenConns)
	sqlxDB.SetMaxIdleConns(maxIdleConns)
	sqlxDB.SetConnMaxLifetime(connMaxLifetime)

	if err := sqlxDB.Ping(); err != nil {
		if closeErr := sqlxDB.Close(); closeErr != nil {
			slog.Error("Failed to close database connection after ping failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connection established",
		"backend", config.BackendPostgres,
		"user", cfg.User,
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database)

	return &Connection{DB: sqlxDB, Backend: config.BackendPostgres}, nil
}

// openSQLite opens a SQLite database file with foreign keys enabled
func openSQLite(cfg *config.SQLiteConfig) (*Connection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sqlite configuration is required")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.Path)

	sqlxDB, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// SQLite serializes writers; a single connection avoids lock errors
	sqlxDB.SetMaxOpenConns(1)

	if err := sqlxDB.Ping(); err != nil {
		if closeErr := sqlxDB.Close(); closeErr != nil {
			slog.Error("Failed to close database connection after ping failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connection established",
		"backend", config.BackendSQLite,
		"path", cfg.Path)

	return &Connection{DB: sqlxDB, Backend: config.BackendSQLite}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	if c.DB != nil {
		slog.Info("Closing database connection")
		return c.DB.Close()
	}
	return nil
}

// Ping verifies the database connection is still alive
func (c *Connection) Ping() error {
	if c.DB != nil {
		return c.DB.Ping()
	}
	return fmt.Errorf("database connection is nil")
}
