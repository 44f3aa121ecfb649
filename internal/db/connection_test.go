package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festquest/festquest-server/internal/config"
)

func TestNewConnectionSQLite(t *testing.T) {
	t.Parallel()

	cfg := &config.DatabaseConfig{
		Backend: config.BackendSQLite,
		SQLite: &config.SQLiteConfig{
			Path: filepath.Join(t.TempDir(), "test.db"),
		},
	}

	conn, err := NewConnection(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	assert.Equal(t, config.BackendSQLite, conn.Backend)
	assert.NoError(t, conn.Ping())
}

func TestNewConnectionUnsupportedBackend(t *testing.T) {
	t.Parallel()

	_, err := NewConnection(&config.DatabaseConfig{Backend: "mongodb"})
	assert.Error(t, err)
}

func TestNewConnectionMissingSection(t *testing.T) {
	t.Parallel()

	_, err := NewConnection(&config.DatabaseConfig{Backend: config.BackendSQLite})
	assert.Error(t, err)
}
