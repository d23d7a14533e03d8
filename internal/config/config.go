// Package config loads the engine configuration from files, environment
// variables, and defaults using Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete engine configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Matching MatchingConfig `mapstructure:"matching"`
	Cache    CacheConfig    `mapstructure:"cache"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DataConfig locates the Table of Disabilities reference dataset.
type DataConfig struct {
	Path string `mapstructure:"path"`
}

// MatchingConfig tunes the fuzzy condition matcher.
type MatchingConfig struct {
	Threshold   int `mapstructure:"threshold"`
	SearchLimit int `mapstructure:"search_limit"`
}

// CacheConfig tunes the condition resolution cache.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	MaxEntries int           `mapstructure:"max_entries"`
	TTL        time.Duration `mapstructure:"ttl"`
}

// HistoryConfig configures the assessment history store. The default DSN
// is the in-memory database, so history is ephemeral unless a file path
// is configured.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Manager loads and validates the engine configuration using Viper.
type Manager struct {
	config *Config
}

// NewManager creates a configuration manager and loads configuration from
// the config file (if present), environment variables, and defaults.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources.
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/vac-rating-engine/")

	viper.SetEnvPrefix("VAC_RATING")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars carry the rest.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	viper.SetDefault("data.path", "data/tod2019.json")

	viper.SetDefault("matching.threshold", 70)
	viper.SetDefault("matching.search_limit", 10)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_entries", 1000)
	viper.SetDefault("cache.ttl", "15m")

	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.dsn", ":memory:")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Reload reloads the configuration.
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration.
func (m *Manager) Validate() error {
	config := m.config

	if config.Data.Path == "" {
		return fmt.Errorf("data path is required")
	}

	if config.Matching.Threshold < 1 || config.Matching.Threshold > 100 {
		return fmt.Errorf("invalid matching threshold: %d", config.Matching.Threshold)
	}
	if config.Matching.SearchLimit <= 0 {
		return fmt.Errorf("invalid search limit: %d", config.Matching.SearchLimit)
	}

	if config.Cache.Enabled {
		if config.Cache.MaxEntries <= 0 {
			return fmt.Errorf("invalid cache size: %d", config.Cache.MaxEntries)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache TTL: %s", config.Cache.TTL)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}
	if format := strings.ToLower(config.Logging.Format); format != "json" && format != "text" {
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	return nil
}
