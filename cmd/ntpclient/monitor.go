package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KagamiChan/go-ntp-client/internal/config"
	"github.com/KagamiChan/go-ntp-client/internal/logger"
	timehealth "github.com/KagamiChan/go-ntp-client/internal/time"
	"github.com/KagamiChan/go-ntp-client/internal/web"
)

func newMonitorCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run periodic health checks against the configured NTP servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.Config
			var err error

			// With a config file its log section is authoritative;
			// otherwise LOG_LEVEL/LOG_FORMAT from the environment apply.
			if configPath != "" {
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
				logger.SetDefault(logger.New(logger.Config{
					Level:  cfg.Log.Level,
					Format: cfg.Log.Format,
				}))
			} else {
				cfg = config.Default()
				logger.Init()
			}
			log := logger.Default()

			log.Info("NTP monitor starting",
				"version", Version,
				"commit", GitCommit,
				"servers", cfg.NTP.Servers,
				"pid", os.Getpid())

			th := timehealth.NewTimeHealth(timehealth.Config{
				Servers:              cfg.NTP.Servers,
				Port:                 cfg.NTP.Port,
				CheckIntervalSeconds: cfg.NTP.CheckIntervalSeconds,
				MaxOffsetSeconds:     cfg.NTP.MaxOffsetSeconds,
				TimeoutMs:            cfg.NTP.TimeoutMs,
			})
			th.Start()
			defer th.Stop()

			status := th.GetStatus()
			log.Info("Initial time check complete",
				"healthy", status.Healthy,
				"offset_ms", status.Offset.Milliseconds(),
				"server", status.LastServer)

			var webServer *web.Server
			if cfg.Web.Enabled {
				webServer = web.NewServer(cfg.Web, th, Version, log)
				if err := webServer.Start(); err != nil {
					return err
				}
			}

			// Wait for shutdown signal
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Info("Shutting down", "signal", sig.String())

			if webServer != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := webServer.Shutdown(ctx); err != nil {
					log.Warn("Web server shutdown failed", "error", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config.json (defaults apply when omitted)")

	return cmd
}
