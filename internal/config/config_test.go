package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadLFDConfig_Defaults(t *testing.T) {
	cfg, err := LoadLFDConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	db := cfg.BNY.Database
	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, db.QueryTimeout)
	assert.Equal(t, 20, db.Primary.MaximumPoolSize)
	assert.Equal(t, 5, db.Primary.MinimumIdle)
	assert.Equal(t, 20*time.Second, db.Primary.ConnectionTimeout)
	assert.Equal(t, 10*time.Minute, db.Primary.IdleTimeout)
	assert.Equal(t, 30*time.Minute, db.Primary.MaxLifetime)
	assert.Equal(t, 60*time.Second, db.Primary.LeakDetectionThreshold)
	assert.Equal(t, db.Primary, db.ReadOnly)
	assert.True(t, *db.PreparedStatements.Enabled)
	assert.Equal(t, 250, db.PreparedStatements.Size)
	assert.Equal(t, 2048, db.PreparedStatements.SQLLimit)
}

func TestLoadLFDConfig_FromFile(t *testing.T) {
	path := writeFile(t, `
server:
  port: "9090"
bny:
  database:
    primary:
      maximum-pool-size: 10
      minimum-idle: 12
      connection-timeout: 5s
    prepared-statements:
      enabled: false
`)
	cfg, err := LoadLFDConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 10, cfg.BNY.Database.Primary.MaximumPoolSize)
	assert.Equal(t, 10, cfg.BNY.Database.Primary.MinimumIdle)
	assert.Equal(t, 5*time.Second, cfg.BNY.Database.Primary.ConnectionTimeout)
	assert.False(t, *cfg.BNY.Database.PreparedStatements.Enabled)
}

func TestLoadLFDConfig_RejectsAcquireLongerThanQuery(t *testing.T) {
	path := writeFile(t, `
bny:
  database:
    query-timeout: 5s
    primary:
      connection-timeout: 10s
`)
	_, err := LoadLFDConfig(path)
	require.Error(t, err)
}

func TestLoadDomainConfig(t *testing.T) {
	t.Setenv("APP_MOCK_ENABLED", "false")
	t.Setenv("LFD_API_BASE_URL", "http://lfd:8081")

	path := writeFile(t, `
lfd:
  api:
    max-page-size: 500
cache:
  ttl: 1h
workers:
  export:
    core: 2
`)
	cfg, err := LoadDomainConfig(path)
	require.NoError(t, err)

	assert.False(t, cfg.MockEnabled())
	assert.Equal(t, "http://lfd:8081", cfg.LFD.API.BaseURL)
	assert.Equal(t, 500, cfg.LFD.API.MaxPageSize)
	assert.Equal(t, "advisor-id-placeholder", cfg.LFD.API.AdvisorPlaceholder)
	assert.Equal(t, 300*time.Second, cfg.Cache.TTL)
	assert.True(t, *cfg.Cache.Enabled)
	assert.Equal(t, 10000, cfg.Cache.MaxEntries)
	assert.Equal(t, WorkerConfig{Core: 10, Max: 50, Queue: 100, KeepAlive: time.Minute}, cfg.Workers.General)
	assert.Equal(t, WorkerConfig{Core: 2, Max: 20, Queue: 50, KeepAlive: time.Minute}, cfg.Workers.Export)
}

func TestLoadDomainConfig_MockDefaultsOn(t *testing.T) {
	cfg, err := LoadDomainConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.MockEnabled())
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadDomainConfig_BadBaseURL(t *testing.T) {
	t.Setenv("LFD_API_BASE_URL", "::not a url")
	_, err := LoadDomainConfig("")
	require.Error(t, err)
}
