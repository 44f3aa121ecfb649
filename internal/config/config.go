// Package config provides configuration loading and management for the
// FestQuest API server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "FESTQUEST"

const (
	// BackendPostgres selects the PostgreSQL storage backend
	BackendPostgres = "postgres"
	// BackendSQLite selects the SQLite storage backend
	BackendSQLite = "sqlite"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// Server holds the HTTP server settings
	Server ServerConfig `yaml:"server,omitempty"`

	// Database selects and configures the storage backend
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig defines the HTTP server settings
type ServerConfig struct {
	// Address is the listen address (host:port)
	Address string `yaml:"address,omitempty"`
}

// DatabaseConfig selects the storage backend at startup. Exactly one
// backend section must match the Backend field; the selection never
// changes at runtime.
type DatabaseConfig struct {
	// Backend is either "postgres" or "sqlite"
	Backend string `yaml:"backend"`

	// Postgres holds the PostgreSQL connection settings
	Postgres *PostgresConfig `yaml:"postgres,omitempty"`

	// SQLite holds the SQLite settings
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
}

// PostgresConfig defines PostgreSQL connection settings
type PostgresConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password.
	// This is the recommended approach for production deployments.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require,
	// verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g. "1h")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// SQLiteConfig defines SQLite settings
type SQLiteConfig struct {
	// Path is the path to the database file
	Path string `yaml:"path"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from the FESTQUEST_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (p *PostgresConfig) GetPassword() (string, error) {
	if p.PasswordFile != "" {
		cleanPath := filepath.Clean(p.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", p.PasswordFile, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(EnvPrefix + "_DATABASE_PASSWORD"); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s_DATABASE_PASSWORD environment variable",
		EnvPrefix,
	)
}

// GetConnectionString builds a connection URL suitable for the schema
// migration tooling. The scheme selects the migration driver.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	switch d.Backend {
	case BackendPostgres:
		if d.Postgres == nil {
			return "", fmt.Errorf("database.postgres section is required when backend is %s", BackendPostgres)
		}
		password, err := d.Postgres.GetPassword()
		if err != nil {
			return "", err
		}
		sslMode := d.Postgres.SSLMode
		if sslMode == "" {
			sslMode = "require"
		}
		return fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=%s",
			url.QueryEscape(d.Postgres.User),
			url.QueryEscape(password),
			d.Postgres.Host,
			d.Postgres.Port,
			d.Postgres.Database,
			sslMode,
		), nil
	case BackendSQLite:
		if d.SQLite == nil {
			return "", fmt.Errorf("database.sqlite section is required when backend is %s", BackendSQLite)
		}
		return "sqlite://" + d.SQLite.Path, nil
	default:
		return "", fmt.Errorf("unsupported database backend: %s", d.Backend)
	}
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	switch c.Database.Backend {
	case BackendPostgres:
		return validatePostgresConfig(c.Database.Postgres)
	case BackendSQLite:
		return validateSQLiteConfig(c.Database.SQLite)
	case "":
		return fmt.Errorf("database.backend is required (%s or %s)", BackendPostgres, BackendSQLite)
	default:
		return fmt.Errorf("database.backend must be %s or %s, got %s",
			BackendPostgres, BackendSQLite, c.Database.Backend)
	}
}

// validatePostgresConfig validates PostgreSQL-specific configuration
func validatePostgresConfig(pg *PostgresConfig) error {
	if pg == nil {
		return fmt.Errorf("database.postgres section is required when backend is %s", BackendPostgres)
	}
	if pg.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if pg.Port == 0 {
		return fmt.Errorf("database.postgres.port is required")
	}
	if pg.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if pg.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if pg.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(pg.ConnMaxLifetime); err != nil {
			return fmt.Errorf("database.postgres.connMaxLifetime must be a valid duration (e.g. '1h'): %w", err)
		}
	}
	return nil
}

// validateSQLiteConfig validates SQLite-specific configuration
func validateSQLiteConfig(sq *SQLiteConfig) error {
	if sq == nil {
		return fmt.Errorf("database.sqlite section is required when backend is %s", BackendSQLite)
	}
	if sq.Path == "" {
		return fmt.Errorf("database.sqlite.path is required")
	}
	return nil
}

// GetAddress returns the listen address, using ":8080" if not specified
func (c *Config) GetAddress() string {
	if c.Server.Address == "" {
		return ":8080"
	}
	return c.Server.Address
}
