package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/textworld/internal/factory"
	"github.com/mcoot/textworld/internal/testutil"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, factory.StorageTypeFilesystem, cfg.Storage.Type)
	assert.Equal(t, 60*time.Second, cfg.Session.HeartbeatTimeout)
}

func TestLoadWritesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "textworld.yaml")

	cfg, resolved, err := Load(testutil.NopLogger(), path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err)

	// the written file loads back to the same values
	again, _, err := Load(testutil.NopLogger(), path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textworld.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
session:
  heartbeat_timeout: 2m
storage:
  type: sqlite
  sqlite_path: /tmp/world.db
ratelimit:
  idle_timeout: 90s
`), 0o600))
	t.Setenv("TEXTWORLD_LOG_LEVEL", "debug")
	t.Setenv("TEXTWORLD_NOTIFY_ADDR", "127.0.0.1:7000")

	cfg, _, err := Load(testutil.NopLogger(), path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Session.HeartbeatTimeout)
	assert.Equal(t, factory.StorageTypeSQLite, cfg.Storage.Type)
	assert.Equal(t, "/tmp/world.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:7000", cfg.Notify.Addr)
	assert.Equal(t, 90*time.Second, cfg.Limits().IdleTimeout)
	// untouched keys keep their defaults
	assert.Equal(t, Default().Notify.QueueSize, cfg.Notify.QueueSize)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textworld.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, _, err := Load(testutil.NopLogger(), path)
	assert.Error(t, err)
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = -1
	cfg.Storage.Type = "floppy"
	cfg.Auth.Algorithm = "md5"
	cfg.Log.Level = "loud"
	cfg.RateLimit.IdleTimeout = -time.Second

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "ratelimit.idle_timeout")
}

func TestAppConfig(t *testing.T) {
	cfg := Default()
	cfg.Storage.Type = factory.StorageTypeRedis
	cfg.Storage.RedisURL = "redis://cache:6379"

	app := cfg.App(testutil.NopLogger())
	require.NotNil(t, app.RedisConfig)
	assert.Equal(t, "redis://cache:6379", app.RedisConfig.URL)
	assert.Equal(t, cfg.Notify.QueueSize, app.Game.Channel.QueueSize)
	assert.Equal(t, cfg.Session.HeartbeatTimeout, app.Game.HeartbeatTimeout)

	assert.Nil(t, Default().App(nil).RedisConfig)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, "WARN", level.String())

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}
