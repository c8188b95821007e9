// Package config loads application settings from a YAML file, a local
// .env file and TICKMARK_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Duration parses "250ms" style strings from YAML and env vars.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all application configuration.
type Config struct {
	Symbols     []string    `yaml:"symbols"`
	HistoryDays int         `yaml:"history_days" split_words:"true"`
	Chart       ChartConfig `yaml:"chart"`
	Data        DataConfig  `yaml:"data"`
	Store       StoreConfig `yaml:"store"`
	Debug       bool        `yaml:"debug"`
	LogFile     string      `yaml:"log_file" split_words:"true"`
}

// ChartConfig controls the viewport and selection behavior.
type ChartConfig struct {
	VisibleCount int      `yaml:"visible_count" split_words:"true"`
	ZoomMin      int      `yaml:"zoom_min" split_words:"true"`
	ZoomMax      int      `yaml:"zoom_max" split_words:"true"`
	ClearAfter   Duration `yaml:"clear_after" split_words:"true"`
}

// DataConfig selects the market data sources.
type DataConfig struct {
	BaseURL   string `yaml:"base_url" envconfig:"BASE_URL"`
	StreamURL string `yaml:"stream_url" envconfig:"STREAM_URL"`
	Demo      bool   `yaml:"demo"`
	CacheSize int    `yaml:"cache_size" split_words:"true"`
	RetryMax  int    `yaml:"retry_max" split_words:"true"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Symbols:     []string{"BTCUSDT", "ETHUSDT"},
		HistoryDays: 365,
		Chart: ChartConfig{
			VisibleCount: 120,
			ZoomMin:      10,
			ZoomMax:      500,
			ClearAfter:   Duration(2 * time.Second),
		},
		Data: DataConfig{
			Demo:      true,
			CacheSize: 64,
			RetryMax:  3,
		},
		Store: StoreConfig{
			Path: "tickmark.db",
		},
	}
}

// Load builds the configuration. A missing YAML file is fine; a present
// but malformed one is not. Environment variables win over the file.
func Load(path string) (*Config, error) {
	// .env is optional, production deployments set real env vars
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process("tickmark", cfg); err != nil {
		return nil, fmt.Errorf("config: env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the chart and data layers cannot run on.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("config: at least one symbol is required")
	}
	for i, s := range c.Symbols {
		if s == "" {
			return fmt.Errorf("config: empty symbol at position %d", i)
		}
	}
	if c.HistoryDays < 1 {
		return fmt.Errorf("config: history_days must be at least 1, got %d", c.HistoryDays)
	}
	if c.Chart.VisibleCount < 1 {
		return fmt.Errorf("config: chart.visible_count must be at least 1, got %d", c.Chart.VisibleCount)
	}
	if c.Chart.ZoomMin < 1 {
		return fmt.Errorf("config: chart.zoom_min must be at least 1, got %d", c.Chart.ZoomMin)
	}
	if c.Chart.ZoomMin > c.Chart.ZoomMax {
		return fmt.Errorf("config: chart.zoom_min %d exceeds chart.zoom_max %d", c.Chart.ZoomMin, c.Chart.ZoomMax)
	}
	if c.Chart.ClearAfter <= 0 {
		return fmt.Errorf("config: chart.clear_after must be positive")
	}
	if c.Data.CacheSize < 1 {
		return fmt.Errorf("config: data.cache_size must be at least 1, got %d", c.Data.CacheSize)
	}
	if c.Data.RetryMax < 0 {
		return fmt.Errorf("config: data.retry_max cannot be negative")
	}
	if !c.Data.Demo && c.Data.StreamURL == "" {
		return fmt.Errorf("config: data.stream_url is required when demo mode is off")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("config: store.path is required")
	}
	return nil
}
