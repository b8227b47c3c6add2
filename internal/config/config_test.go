package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/lotbot/core/config"
)

const baseYAML = `
telegram:
  token: "123:abc"
  admin_ids: [11, 22]
market:
  channel_id: -1001234
  contact_username: "@seller_support"
  bot_username: "@lot_bot"
  mini_app_url: " https://example.org/app "
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMemoryDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, baseYAML+`
storage:
  driver: Memory
`))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.CoreConfig().Telegram.Token)
	assert.Equal(t, []int64{11, 22}, cfg.Telegram.AdminIDs)
	assert.Equal(t, coreconfig.RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, StateMemory, cfg.State.Backend)
	assert.Equal(t, int64(-1001234), cfg.Market.ChannelID)
	assert.Equal(t, "seller_support", cfg.Market.ContactUsername)
	assert.Equal(t, "lot_bot", cfg.Market.BotUsername)
	assert.Equal(t, "https://example.org/app", cfg.Market.MiniAppURL)
}

func TestLoadPostgresDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, baseYAML+`
database:
  host: db
  name: lots
`))
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10, cfg.Database.MaxConnections)
}

func TestLoadEnvOverlay(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("STATE_BACKEND", "redis")
	t.Setenv("STATE_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STATE_TTL_SECONDS", "3600")
	t.Setenv("MARKET_CHANNEL_ID", "-42")

	cfg, err := Load(writeConfig(t, baseYAML))
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, StateRedis, cfg.State.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.State.RedisURL)
	assert.Equal(t, int64(3600), int64(cfg.State.TTL().Seconds()))
	assert.Equal(t, int64(-42), cfg.Market.ChannelID)
}

func TestNormalizeErrors(t *testing.T) {
	valid := func() Config {
		var c Config
		c.Telegram.Token = "t"
		c.Telegram.AdminIDs = []int64{1}
		c.Storage.Driver = StorageMemory
		c.Market.ChannelID = -1
		return c
	}
	cases := map[string]func(*Config){
		"core":           func(c *Config) { c.Telegram.Token = "" },
		"storage driver": func(c *Config) { c.Storage.Driver = "sqlite" },
		"postgres host":  func(c *Config) { c.Storage.Driver = StoragePostgres },
		"state backend":  func(c *Config) { c.State.Backend = "etcd" },
		"redis url":      func(c *Config) { c.State.Backend = StateRedis },
		"ttl":            func(c *Config) { c.State.TTLSeconds = -1 },
		"channel":        func(c *Config) { c.Market.ChannelID = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			assert.Error(t, Normalize(&cfg))
		})
	}

	cfg := valid()
	require.NoError(t, Normalize(&cfg))
}
