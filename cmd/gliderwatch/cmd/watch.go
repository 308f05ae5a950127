package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gliderwatch/internal/engine"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the feed continuously at random intervals",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("metrics-addr", "", "listen address for /metrics and /healthz (empty disables)")
	cobra.CheckErr(viper.BindPFlag("metrics-addr", watchCmd.Flags().Lookup("metrics-addr")))

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if v := viper.GetString("metrics-addr"); v != "" {
		cfg.Metrics.Addr = v
	}

	log := newLogger(cfg)
	eng := buildEngine(cfg, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var e *echo.Echo
	if cfg.Metrics.Addr != "" {
		e = echo.New()
		e.HideBanner = true
		e.HidePort = true

		e.GET("/healthz", func(c echo.Context) error {
			return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
		})
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

		log.Info("starting metrics listener", "addr", cfg.Metrics.Addr)
		go func() {
			if err := e.Start(cfg.Metrics.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics listener error", "error", err)
			}
		}()
	}

	sched := engine.NewScheduler(eng,
		minutes(cfg.Watch.MinMinutes), minutes(cfg.Watch.MaxMinutes),
		engine.WithSchedulerLogger(log))

	err = sched.Run(ctx)

	if e != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if serr := e.Shutdown(shutdownCtx); serr != nil {
			log.Error("shutting down metrics listener", "error", serr)
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("watch stopped")
	return nil
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}
