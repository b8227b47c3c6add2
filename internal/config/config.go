// Package config loads the lotbot configuration: the shared core settings
// plus storage, conversation state, marketplace and metrics sections.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/lotbot/core/config"
	coredatabase "github.com/m3rciful/lotbot/core/database"
)

const (
	// StorageMemory keeps lots and applications in process memory.
	StorageMemory = "memory"
	// StoragePostgres keeps lots and applications in PostgreSQL.
	StoragePostgres = "postgres"

	// StateMemory keeps conversation state in process memory.
	StateMemory = "memory"
	// StateRedis keeps conversation state in Redis.
	StateRedis = "redis"
)

// StorageConfig selects the entity store.
type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
}

// StateConfig selects the conversation state backend.
type StateConfig struct {
	Backend   string `yaml:"backend" envconfig:"STATE_BACKEND"`
	RedisURL  string `yaml:"redis_url" envconfig:"STATE_REDIS_URL"`
	KeyPrefix string `yaml:"key_prefix" envconfig:"STATE_KEY_PREFIX"`
	// TTLSeconds expires abandoned conversations in Redis; 0 keeps them.
	TTLSeconds int `yaml:"ttl_seconds" envconfig:"STATE_TTL_SECONDS"`
}

// TTL returns TTLSeconds as a duration.
func (s StateConfig) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

// MarketConfig holds marketplace settings.
type MarketConfig struct {
	// ChannelID is the chat approved lots are published to.
	ChannelID  int64  `yaml:"channel_id" envconfig:"MARKET_CHANNEL_ID"`
	MiniAppURL string `yaml:"mini_app_url" envconfig:"MARKET_MINI_APP_URL"`
	// ContactUsername is who buyers are sent to by /buylot.
	ContactUsername string `yaml:"contact_username" envconfig:"MARKET_CONTACT_USERNAME"`
	BotUsername     string `yaml:"bot_username" envconfig:"MARKET_BOT_USERNAME"`
}

// MetricsConfig configures the Prometheus endpoint; an empty Listen disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen" envconfig:"METRICS_LISTEN"`
}

// Config is the full lotbot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Storage  StorageConfig       `yaml:"storage"`
	State    StateConfig         `yaml:"state"`
	Market   MarketConfig        `yaml:"market"`
	Metrics  MetricsConfig       `yaml:"metrics"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads the YAML file at path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" {
		driver = StoragePostgres
	}
	switch driver {
	case StoragePostgres:
		if strings.TrimSpace(cfg.Database.Host) == "" || strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.host and database.name are required for storage.driver %q", StoragePostgres)
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
		if cfg.Database.MaxConnections <= 0 {
			cfg.Database.MaxConnections = 10
		}
	case StorageMemory:
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: postgres, memory", cfg.Storage.Driver)
	}
	cfg.Storage.Driver = driver

	backend := strings.ToLower(strings.TrimSpace(cfg.State.Backend))
	if backend == "" {
		backend = StateMemory
	}
	switch backend {
	case StateRedis:
		if strings.TrimSpace(cfg.State.RedisURL) == "" {
			return fmt.Errorf("state.redis_url is required when state.backend is %q", StateRedis)
		}
	case StateMemory:
	default:
		return fmt.Errorf("invalid state.backend %q; allowed: memory, redis", cfg.State.Backend)
	}
	cfg.State.Backend = backend
	if cfg.State.TTLSeconds < 0 {
		return fmt.Errorf("state.ttl_seconds must be >= 0")
	}

	if cfg.Market.ChannelID == 0 {
		return fmt.Errorf("market.channel_id is required")
	}
	cfg.Market.ContactUsername = strings.TrimPrefix(strings.TrimSpace(cfg.Market.ContactUsername), "@")
	cfg.Market.BotUsername = strings.TrimPrefix(strings.TrimSpace(cfg.Market.BotUsername), "@")
	cfg.Market.MiniAppURL = strings.TrimSpace(cfg.Market.MiniAppURL)
	return nil
}
