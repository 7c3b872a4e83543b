package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/craftlist/craftlist/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commonTOML = `[common]
version = 1

[common.debug]
log_level = "debug"
log_dir = ""

[common.retry]
max_retries = 3
delay = 250
max_delay = 4000

[common.postgresql]
host = "db.internal"
port = 5433
user = "craftlist"
password = "secret"
db_name = "craftlist"
max_open_conns = 4
max_idle_conns = 2
max_lifetime = 10
max_idle_time = 5

[common.redis]
host = "cache.internal"
port = 6380
username = ""
password = ""

[common.status_api]
primary_url = "https://status.primary.test/v2/status"
fallback_url = "https://status.fallback.test/3"
request_timeout = 3000
cache_ttl = 45

[common.site]
base_url = "https://servers.test"

[common.api]
listen_addr = ":9090"
allowed_origins = ["https://servers.test"]
visitor_salt = "pepper"
admin_token = "hunter2"
`

const workerTOML = `[worker]
version = 1
scan_batch_size = 25
scan_delay = 1500
scan_interval = 600
sample_retention_days = 30
event_retention_days = 60
`

func writeConfigDir(t *testing.T, common, worker string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "common.toml"), []byte(common), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "worker.toml"), []byte(worker), 0o600))
	t.Chdir(dir)
}

func TestLoadConfig(t *testing.T) {
	writeConfigDir(t, commonTOML, workerTOML)

	cfg, _, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.CurrentCommonVersion, cfg.Common.Version)
	assert.Equal(t, config.CurrentWorkerVersion, cfg.Worker.Version)

	assert.Equal(t, "debug", cfg.Common.Debug.LogLevel)
	assert.Equal(t, uint64(3), cfg.Common.Retry.MaxRetries)
	assert.Equal(t, 250, cfg.Common.Retry.Delay)
	assert.Equal(t, "db.internal", cfg.Common.PostgreSQL.Host)
	assert.Equal(t, 5433, cfg.Common.PostgreSQL.Port)
	assert.True(t, cfg.Common.PostgreSQL.Enabled())
	assert.Equal(t, "cache.internal", cfg.Common.Redis.Host)
	assert.Equal(t, "https://status.primary.test/v2/status", cfg.Common.StatusAPI.PrimaryURL)
	assert.Equal(t, 45, cfg.Common.StatusAPI.CacheTTL)
	assert.Equal(t, "https://servers.test", cfg.Common.Site.BaseURL)
	assert.Equal(t, ":9090", cfg.Common.API.ListenAddr)
	assert.Equal(t, "pepper", cfg.Common.API.VisitorSalt)
	assert.Equal(t, "hunter2", cfg.Common.API.AdminToken)

	assert.Equal(t, 25, cfg.Worker.ScanBatchSize)
	assert.Equal(t, 1500, cfg.Worker.ScanDelay)
	assert.Equal(t, 600, cfg.Worker.ScanInterval)
	assert.Equal(t, 30, cfg.Worker.SampleRetentionDays)
	assert.Equal(t, 60, cfg.Worker.EventRetentionDays)
}

func TestLoadConfigShippedFiles(t *testing.T) {
	// The files under config/ must load as-is, otherwise every binary
	// fails at startup before doing anything useful.
	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	t.Chdir(root)

	cfg, _, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.CurrentCommonVersion, cfg.Common.Version)
	assert.Equal(t, config.CurrentWorkerVersion, cfg.Worker.Version)
	assert.NotEmpty(t, cfg.Common.PostgreSQL.Host)
	assert.NotEmpty(t, cfg.Common.StatusAPI.PrimaryURL)
	assert.NotEmpty(t, cfg.Common.API.VisitorSalt)
	assert.Positive(t, cfg.Worker.ScanBatchSize)
}

func TestLoadConfigMissingVersion(t *testing.T) {
	writeConfigDir(t, "[common]\n[common.debug]\nlog_level = \"info\"\n", workerTOML)

	_, _, err := config.LoadConfig()
	require.ErrorIs(t, err, config.ErrConfigVersionMissing)
}

func TestLoadConfigVersionMismatch(t *testing.T) {
	writeConfigDir(t, "[common]\nversion = 99\n", workerTOML)

	_, _, err := config.LoadConfig()
	require.ErrorIs(t, err, config.ErrConfigVersionMismatch)
}

func TestLoadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "common.toml"), []byte(commonTOML), 0o600))
	t.Chdir(dir)

	_, _, err := config.LoadConfig()
	require.ErrorIs(t, err, config.ErrConfigFileNotFound)
}
