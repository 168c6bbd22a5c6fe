package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("reads values from toml", func(t *testing.T) {
		path := writeConfig(t, `
[storage]
driver = "redis"
namespace = "himo"

[redis]
host = "10.0.0.5"
port = 6380

[bot]
enabled = false
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "redis", cfg.Storage.Driver)
		assert.Equal(t, "10.0.0.5", cfg.Redis.Host)
		assert.Equal(t, 6380, cfg.Redis.Port)
		assert.False(t, cfg.Bot.Enabled)
		assert.Equal(t, "himo:users", cfg.Storage.Key("users"))
	})

	t.Run("keeps defaults for omitted keys", func(t *testing.T) {
		path := writeConfig(t, `
[logging]
level = "debug"
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "sqlite", cfg.Storage.Driver)
		assert.Equal(t, "Himo", cfg.Admin.Username)
		assert.Equal(t, "HIMO001", cfg.Admin.UniqueID)
		assert.Equal(t, []string{"/bot", "бот"}, cfg.Bot.Triggers)
		assert.True(t, cfg.Moderation.EnforceBans)
		assert.True(t, cfg.RateLimit.Enabled)
		assert.Equal(t, 30, cfg.RateLimit.MessagesPerMinute)
	})

	t.Run("empty path uses defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "users", cfg.Storage.Key("users"))
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("unknown driver fails", func(t *testing.T) {
		path := writeConfig(t, `
[storage]
driver = "etcd"
`)
		_, err := LoadConfig(path)
		assert.ErrorIs(t, err, ErrUnknownDriver)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("HIMO_STORAGE_DRIVER", "memory")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "memory", cfg.Storage.Driver)
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Admin.UniqueID = "SHORT"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Admin.Secret = ""
	assert.Error(t, cfg.Validate())

	cfg.Admin.SecretHash = "$2a$10$abcdefghijklmnopqrstuu"
	assert.NoError(t, cfg.Validate())
}

func TestBuildDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "himo"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=himo sslmode=disable", cfg.BuildDSN())
}
