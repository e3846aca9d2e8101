// Package config loads server configuration from an optional YAML file
// combined with HINTRUSH_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Room   RoomConfig   `mapstructure:"room"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimit is requests per second allowed per client address
	RateLimit float64 `mapstructure:"rate_limit"`
	// RateBurst is the per-client burst allowance
	RateBurst int `mapstructure:"rate_burst"`
}

// Addr returns the host:port string for the listener
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RoomConfig configures room lifecycle behavior
type RoomConfig struct {
	MaxPlayers int           `mapstructure:"max_players"`
	MaxRounds  int           `mapstructure:"max_rounds"`
	ReapGrace  time.Duration `mapstructure:"reap_grace"`
}

// CacheConfig selects and configures the leaderboard cache tier
type CacheConfig struct {
	// Backend is "redis" or "memory"
	Backend      string `mapstructure:"backend"`
	RedisURL     string `mapstructure:"redis_url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// StoreConfig selects and configures the durable stats store
type StoreConfig struct {
	// Backend is "postgres" or "memory"
	Backend  string `mapstructure:"backend"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LogConfig configures structured logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
}

// Load reads config from the given path (or the working directory when
// empty). A missing config file is fine; environment variables and
// defaults cover everything.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("hintrush")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("HINTRUSH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 25.0)
	v.SetDefault("server.rate_burst", 50)

	v.SetDefault("room.max_players", 4)
	v.SetDefault("room.max_rounds", 3)
	v.SetDefault("room.reap_grace", 5*time.Second)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_url", "redis://localhost:6379")
	v.SetDefault("cache.pool_size", 10)
	v.SetDefault("cache.min_idle_conns", 2)

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.host", "localhost")
	v.SetDefault("store.port", 5432)
	v.SetDefault("store.user", "hintrush")
	v.SetDefault("store.dbname", "hintrush")
	v.SetDefault("store.sslmode", "disable")

	v.SetDefault("log.level", "info")
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Room.MaxPlayers < 1 {
		return fmt.Errorf("room.max_players must be at least 1, got %d", c.Room.MaxPlayers)
	}
	if c.Room.MaxRounds < 1 {
		return fmt.Errorf("room.max_rounds must be at least 1, got %d", c.Room.MaxRounds)
	}
	return nil
}
