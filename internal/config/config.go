// Package config handles loading and validating the application
// configuration from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Feed     FeedConfig     `yaml:"feed"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Telegram TelegramConfig `yaml:"telegram"`
	Watch    WatchConfig    `yaml:"watch"`
	State    StateConfig    `yaml:"state"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// FeedConfig defines the classifieds feed source.
type FeedConfig struct {
	URL string `yaml:"url"`
}

// ScrapeConfig defines detail/profile page fetching behavior.
type ScrapeConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	PerSecond float64       `yaml:"per_second"`
	Burst     int           `yaml:"burst"`
}

// TelegramConfig defines the Telegram Bot API target.
type TelegramConfig struct {
	Token       string `yaml:"token"`
	ChatID      string `yaml:"chat_id"`
	APIURL      string `yaml:"api_url"`
	MaxAttempts int    `yaml:"max_attempts"`
}

// WatchConfig defines the randomized polling interval in watch mode.
type WatchConfig struct {
	MinMinutes float64 `yaml:"min_minutes"`
	MaxMinutes float64 `yaml:"max_minutes"`
}

// StateConfig defines where the seen-listing state lives.
type StateConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig defines the optional metrics/health listener.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the listener
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution, applying defaults, and validating the result. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks invariants that the CLI must reject before any network
// activity happens.
func (cfg *Config) Validate() error {
	var errs []error

	if cfg.Feed.URL == "" {
		errs = append(errs, fmt.Errorf("feed.url is required"))
	}
	if cfg.Watch.MinMinutes <= 0 {
		errs = append(errs, fmt.Errorf("watch.min_minutes must be positive"))
	}
	if cfg.Watch.MinMinutes > cfg.Watch.MaxMinutes {
		errs = append(errs, fmt.Errorf(
			"watch.min_minutes (%.1f) must not exceed watch.max_minutes (%.1f)",
			cfg.Watch.MinMinutes, cfg.Watch.MaxMinutes,
		))
	}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID == "" {
		errs = append(errs, fmt.Errorf("telegram.chat_id is required when a token is set"))
	}
	if cfg.Telegram.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("telegram.max_attempts must be at least 1"))
	}

	return errors.Join(errs...)
}

func applyDefaults(cfg *Config) {
	applyFeedDefaults(&cfg.Feed)
	applyScrapeDefaults(&cfg.Scrape)
	applyTelegramDefaults(&cfg.Telegram)
	applyWatchDefaults(&cfg.Watch)
	applyStateDefaults(&cfg.State)
	applyLoggingDefaults(&cfg.Logging)
}

func applyFeedDefaults(f *FeedConfig) {
	if f.URL == "" {
		f.URL = "https://www.segelflug.de/osclass/index.php?page=search&sFeed=rss"
	}
}

func applyScrapeDefaults(s *ScrapeConfig) {
	if s.Timeout == 0 {
		s.Timeout = 10 * time.Second
	}
	if s.PerSecond == 0 {
		s.PerSecond = 1.0
	}
	if s.Burst == 0 {
		s.Burst = 1
	}
}

func applyTelegramDefaults(t *TelegramConfig) {
	if t.ChatID == "" {
		t.ChatID = "@segelflug_classifieds"
	}
	if t.APIURL == "" {
		t.APIURL = "https://api.telegram.org"
	}
	if t.MaxAttempts == 0 {
		t.MaxAttempts = 5
	}
}

func applyWatchDefaults(w *WatchConfig) {
	if w.MinMinutes == 0 {
		w.MinMinutes = 10
	}
	if w.MaxMinutes == 0 {
		w.MaxMinutes = 30
	}
}

func applyStateDefaults(s *StateConfig) {
	if s.Path == "" {
		s.Path = "last-guids.json"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}
