package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("SCANNER_TIMEOUT_SEC", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, BackendSQL, cfg.Database.Backend)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 30*time.Second, cfg.Scanner.ScanTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.Scanner.Settle())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
port: "9090"
debug: true
database:
  backend: gorm
  path: /srv/docs.db
scanner:
  inbox_dir: /srv/inbox
picker:
  destination: s3://scans/out
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port, "environment overrides the file")
	assert.True(t, cfg.Debug)
	assert.Equal(t, BackendGorm, cfg.Database.Backend)
	assert.Equal(t, "/srv/docs.db", cfg.Database.Path)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver, "defaults survive a partial file")
	assert.Equal(t, "/srv/inbox", cfg.Scanner.InboxDir)
	assert.Equal(t, "s3://scans/out", cfg.Picker.Destination)
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
	assert.Nil(t, cfg)
}

func TestAppConfig_Location(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.TimeZone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	t.Setenv(key, "")
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	t.Setenv(key, "")
	assert.Equal(t, 10, getEnvInt(key, 10))
}
