// Package config provides configuration management for the analytics
// application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	UI        UIConfig        `mapstructure:"ui"`
}

// AnalyticsConfig holds the defaults for the analytics commands.
type AnalyticsConfig struct {
	TradeFetchLimit int `mapstructure:"trade_fetch_limit"` // trades loaded per analysis
	HistoryLimit    int `mapstructure:"history_limit"`     // max state-history points
	TrendDays       int `mapstructure:"trend_days"`        // default consistency range
	InsightDays     int `mapstructure:"insight_days"`      // default insights period
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/traderlens"
	}
	return filepath.Join(home, ".config", "traderlens")
}

// DefaultDBPath returns the default SQLite database path.
func DefaultDBPath() string {
	return filepath.Join(DefaultConfigDir(), "traderlens.db")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config file is not an error; defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("analytics.trade_fetch_limit", 200)
	v.SetDefault("analytics.history_limit", 20)
	v.SetDefault("analytics.trend_days", 7)
	v.SetDefault("analytics.insight_days", 30)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "2006-01-02")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if lvl := os.Getenv("TRADERLENS_LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = lvl
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Analytics.TradeFetchLimit <= 0 {
		return fmt.Errorf("trade_fetch_limit must be positive")
	}
	if c.Analytics.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive")
	}
	if c.Analytics.TrendDays <= 0 || c.Analytics.TrendDays > 365 {
		return fmt.Errorf("trend_days must be between 1 and 365")
	}
	if c.Analytics.InsightDays <= 0 || c.Analytics.InsightDays > 365 {
		return fmt.Errorf("insight_days must be between 1 and 365")
	}
	return nil
}
