// Package cmd implements the gliderwatch CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gliderwatch/internal/config"
	"gliderwatch/internal/engine"
	"gliderwatch/internal/feed"
	"gliderwatch/internal/notify"
	"gliderwatch/internal/scrape"
	"gliderwatch/internal/seen"
	"gliderwatch/pkg/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gliderwatch",
	Short: "Watch Segelflug.de classifieds and announce new listings on Telegram",
	Long: "gliderwatch polls the Segelflug.de classifieds feed, scrapes each new\n" +
		"listing's detail and seller pages, and announces it to a Telegram chat.\n" +
		"Listings are reported at most once, tracked in a local state file.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file path (optional)")
	pf.String("state-file", "", "seen-listings state file (default last-guids.json)")
	pf.String("token", "", "Telegram bot token (env GLIDERWATCH_TELEGRAM_TOKEN)")
	pf.String("chat-id", "", "Telegram chat ID (default @segelflug_classifieds)")
	pf.Float64("min-minutes", 0, "minimum minutes between polls (default 10)")
	pf.Float64("max-minutes", 0, "maximum minutes between polls (default 30)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text, json")

	for _, name := range []string{
		"state-file", "token", "chat-id",
		"min-minutes", "max-minutes",
		"log-level", "log-format",
	} {
		cobra.CheckErr(viper.BindPFlag(name, pf.Lookup(name)))
	}

	viper.SetEnvPrefix("GLIDERWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	cobra.CheckErr(viper.BindEnv("token", "GLIDERWATCH_TELEGRAM_TOKEN", "GLIDERWATCH_TOKEN"))
}

// loadConfig builds the effective configuration: file (or defaults), then
// flag/env overrides, then a final validation pass so flag combinations
// like --min-minutes 45 --max-minutes 30 are rejected before any network
// activity.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if v := viper.GetString("state-file"); v != "" {
		cfg.State.Path = v
	}
	if v := viper.GetString("token"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := viper.GetString("chat-id"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := viper.GetFloat64("min-minutes"); v != 0 {
		cfg.Watch.MinMinutes = v
	}
	if v := viper.GetFloat64("max-minutes"); v != 0 {
		cfg.Watch.MaxMinutes = v
	}
	if v := viper.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := viper.GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// buildEngine wires the component graph for one or many cycles.
func buildEngine(cfg *config.Config, log *slog.Logger) *engine.Engine {
	httpClient := &http.Client{Timeout: cfg.Scrape.Timeout}

	feedClient := feed.NewClient(cfg.Feed.URL, httpClient, feed.WithLogger(log))
	fetcher := scrape.NewFetcher(httpClient, cfg.Scrape.PerSecond, cfg.Scrape.Burst,
		scrape.WithFetcherLogger(log))
	store := seen.NewStore(cfg.State.Path, seen.WithLogger(log))

	var notifier notify.Notifier
	if cfg.Telegram.Token != "" {
		notifier = notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID,
			notify.WithHTTPClient(httpClient),
			notify.WithAPIURL(cfg.Telegram.APIURL),
			notify.WithMaxAttempts(cfg.Telegram.MaxAttempts),
			notify.WithTelegramLogger(log),
		)
	} else {
		log.Info("no Telegram token configured, running console-only")
		notifier = notify.NewNoop(log)
	}

	return engine.NewEngine(feedClient, fetcher, store, notifier,
		engine.WithLogger(log))
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}
