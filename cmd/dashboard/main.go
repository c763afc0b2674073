package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/mwac-vis/internal/adapter/file"
	httpadapter "github.com/couchcryptid/mwac-vis/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/mwac-vis/internal/adapter/kafka"
	"github.com/couchcryptid/mwac-vis/internal/adapter/watch"
	"github.com/couchcryptid/mwac-vis/internal/config"
	"github.com/couchcryptid/mwac-vis/internal/observability"
	"github.com/couchcryptid/mwac-vis/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := file.NewSource(cfg.DataPath, file.Options{
		Sheet:     cfg.DataSheet,
		Delimiter: cfg.DataDelimiter,
		Encoding:  cfg.DataEncoding,
	})
	transformer := pipeline.NewTransformer(cfg.SeasonStartYear, cfg.NormalizeOptions(), logger, metrics)

	// Publication is feature-flagged via KAFKA_ENABLED.
	var (
		publisher pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		metrics.PublishEnabled.Set(1)
		logger.Info("kafka publication enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publication disabled")
	}

	loader := pipeline.New(source, transformer, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, loader, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	triggers := watch.NewTriggers()

	var watcher *watch.Watcher
	if cfg.WatchEnabled {
		watcher, err = watch.NewWatcher(cfg.DataPath, cfg.ReloadDebounce, logger)
		if err != nil {
			logger.Error("file watcher unavailable, continuing without it", "error", err)
		} else {
			go func() {
				if err := watcher.Run(ctx, triggers); err != nil {
					logger.Error("file watcher error", "error", err)
				}
			}()
		}
	}

	var schedule *watch.Schedule
	if cfg.ReloadSchedule != "" {
		schedule, err = watch.NewSchedule(cfg.ReloadSchedule, triggers, logger)
		if err != nil {
			logger.Error("failed to configure reload schedule", "error", err)
			os.Exit(1)
		}
		schedule.Start()
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start snapshot loader.
	go func() {
		if err := loader.Run(ctx, triggers); err != nil {
			logger.Error("loader error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if schedule != nil {
		select {
		case <-schedule.Stop().Done():
		case <-shutdownCtx.Done():
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if watcher != nil {
		if err := watcher.Close(); err != nil {
			logger.Error("file watcher close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
