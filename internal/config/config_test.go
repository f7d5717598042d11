package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	content := `
connection:
  host: db.example.com
  port: 5433
  username: loader
  database: college_data
  sslmode: require
loader:
  batch_size: 500
  on_violation: continue
timeout: 30m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "db.example.com", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "loader", cfg.Connection.Username)
	assert.Equal(t, "college_data", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, 500, cfg.Loader.BatchSize)
	assert.Equal(t, "continue", cfg.Loader.OnViolation)
	assert.Equal(t, "30m", cfg.Timeout)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("connection: [broken"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_CloudAuthFields(t *testing.T) {
	dir := t.TempDir()
	content := `
connection:
  host: myserver.postgres.database.azure.com
  auth_method: azure
  azure_tenant_id: tenant-123
  azure_client_id: client-456
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "azure", cfg.Connection.AuthMethod)
	assert.Equal(t, "tenant-123", cfg.Connection.AzureTenantID)
	assert.Equal(t, "client-456", cfg.Connection.AzureClientID)
}

func TestLoad_EmptyFileGivesZeroConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), nil, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Zero(t, cfg.Connection.Host)
	assert.Zero(t, cfg.Loader.BatchSize)
}
