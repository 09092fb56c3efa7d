// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Store   StoreConfig   `mapstructure:"store"`
	DB      DBConfig      `mapstructure:"db"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Events  EventsConfig  `mapstructure:"events"`
	Users   []SeedUser    `mapstructure:"users"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Provider string `mapstructure:"provider"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// FetchConfig governs the metadata extraction fetch.
type FetchConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// EventsConfig selects the moderation event publisher.
type EventsConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// SeedUser provisions an identity for the memory store. Identity issuance is
// an external concern in production; seeds exist for development setups.
type SeedUser struct {
	ID    string `mapstructure:"id"`
	Name  string `mapstructure:"name"`
	Role  string `mapstructure:"role"`
	Token string `mapstructure:"token"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LINKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("store.provider", "memory")
	v.SetDefault("db.max_conns", 8)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("fetch.timeout_seconds", 10)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("events.provider", "memory")
	v.SetDefault("events.topic", "linkboard-moderation")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	switch c.Store.Provider {
	case "memory":
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set when store.provider is postgres")
		}
	default:
		return fmt.Errorf("unknown store provider: %s", c.Store.Provider)
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	switch c.Events.Provider {
	case "memory":
	case "pubsub":
		if c.Events.ProjectID == "" || c.Events.Topic == "" {
			return fmt.Errorf("events.project_id and events.topic must be set when events.provider is pubsub")
		}
	default:
		return fmt.Errorf("unknown events provider: %s", c.Events.Provider)
	}
	return nil
}

// FetchTimeout converts the configured timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}
