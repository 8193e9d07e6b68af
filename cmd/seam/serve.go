package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loomworks/seam/internal/config"
	"github.com/loomworks/seam/internal/events"
	"github.com/loomworks/seam/internal/export"
	"github.com/loomworks/seam/internal/server"
	"github.com/loomworks/seam/internal/store/postgres"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the seam server",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Connect to Postgres.
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (SEAM_NATS_URL not set)")
		}

		// Start HTTP server.
		seamServer := server.NewSeamServer(store, publisher)
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: server.LoggingMiddleware(seamServer.NewHTTPHandler(cfg.AuthToken)),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start the export scheduler if any destinations are configured.
		var scheduler *export.Scheduler
		if cfg.ExportInterval > 0 {
			var dests []export.Destination

			if cfg.ExportS3Bucket != "" {
				s3Dest, err := export.NewS3Destination(
					context.Background(),
					cfg.ExportS3Bucket,
					cfg.ExportS3Key,
					cfg.ExportS3Region,
					cfg.ExportS3Endpoint,
				)
				if err != nil {
					logger.Error("failed to create S3 export destination", "err", err)
				} else {
					dests = append(dests, s3Dest)
					logger.Info("export S3 destination enabled", "bucket", cfg.ExportS3Bucket, "key", cfg.ExportS3Key)
				}
			}

			if cfg.ExportGitRepo != "" {
				gitDest := export.NewGitDestination(cfg.ExportGitRepo, cfg.ExportGitFile, cfg.ExportGitBranch)
				dests = append(dests, gitDest)
				logger.Info("export git destination enabled", "repo", cfg.ExportGitRepo, "file", cfg.ExportGitFile)
			}

			if len(dests) > 0 {
				scheduler = export.NewScheduler(store, dests, cfg.ExportInterval, logger)
				scheduler.Start()
				logger.Info("export scheduler started", "interval", cfg.ExportInterval)
			}
		}

		logger.Info("seam server started", "http_addr", cfg.HTTPAddr)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown.
		if scheduler != nil {
			scheduler.Stop()
			logger.Info("export scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
