// Package config loads audit bot configuration from YAML with
// environment variable overrides for credentials.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Tracker  TrackerConfig  `yaml:"tracker"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	Feed     FeedConfig     `yaml:"feed"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
}

type GatewayConfig struct {
	// BaseURL is the root of the remote analysis service.
	BaseURL string `yaml:"base_url"`
	// ReferenceBaseURL is the root for finding reference links in reports.
	ReferenceBaseURL string        `yaml:"reference_base_url"`
	Timeout          time.Duration `yaml:"timeout"`
}

type TrackerConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	// MaxPollFailures bounds consecutive transport failures before the
	// session is abandoned. Zero means retry forever.
	MaxPollFailures int `yaml:"max_poll_failures"`
}

type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	// UseMemory switches all stores to in-memory implementations.
	UseMemory bool `yaml:"use_memory"`
}

type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

func Default() Config {
	return Config{
		Gateway: GatewayConfig{
			Timeout: 30 * time.Second,
		},
		Tracker: TrackerConfig{
			PollInterval: 2 * time.Second,
		},
		Storage: StorageConfig{
			UseMemory: true,
		},
		Cache: CacheConfig{
			TTL: 2 * time.Minute,
		},
		Feed: FeedConfig{
			Addr: ":8090",
		},
	}
}

// LoadFile reads a YAML config merged over defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides credentials and endpoints from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := strings.TrimSpace(os.Getenv("AUDIT_API_BASE_URL")); v != "" {
		c.Gateway.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("AUDIT_REFERENCE_BASE_URL")); v != "" {
		c.Gateway.ReferenceBaseURL = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		c.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
	if v := os.Getenv("STORAGE_USE_MEMORY"); v != "" {
		c.Storage.UseMemory = strings.EqualFold(v, "true") || v == "1"
	}
}

// Validate checks that the config is complete enough to start.
func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required")
	}
	if c.Gateway.ReferenceBaseURL == "" {
		return fmt.Errorf("gateway.reference_base_url is required")
	}
	if c.Tracker.PollInterval <= 0 {
		return fmt.Errorf("tracker.poll_interval must be positive")
	}
	if c.Tracker.MaxPollFailures < 0 {
		return fmt.Errorf("tracker.max_poll_failures must not be negative")
	}
	if !c.Storage.UseMemory {
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required unless storage.use_memory is set")
		}
		if c.Storage.ClickhouseDSN == "" {
			return fmt.Errorf("storage.clickhouse_dsn is required unless storage.use_memory is set")
		}
	}
	return nil
}
