package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with none of the
// configuration variables set.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "SERVER_PORT", "PORT", "APP_NAME", "APP_VERSION", "APP_DEBUG", "DEBUG",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "ENVIRONMENT",
		"DATABASE_DRIVER", "DATABASE_DSN", "DATABASE_URL", "DATASTORE_PROJECT_ID",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "Task Management API", cfg.App.Name)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.False(t, cfg.App.Debug)
	assert.True(t, cfg.OTel.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTel.OTLPEndpoint)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "./data/task_management.db", cfg.Database.DSN)
}

func TestLoadFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/tasks")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.OTel.Enabled)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/tasks", cfg.Database.DSN)
	assert.True(t, cfg.App.Debug)
}

func TestLoadFromFileAndDotEnv(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  name: From File
database:
  driver: memory
`), 0o600))
	t.Setenv("CONFIG_FILE", path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ENVIRONMENT=staging\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ENVIRONMENT") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "From File", cfg.App.Name)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_DRIVER", "mongodb")

	_, err := Load()

	assert.ErrorContains(t, err, "mongodb")
}

func TestLoadMissingConfigFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "nope.yaml"))

	_, err := Load()

	assert.Error(t, err)
}
