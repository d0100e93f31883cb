package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/crash-map-service/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/crash-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/crash-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/crash-map-service/internal/config"
	"github.com/couchcryptid/crash-map-service/internal/crashmap"
	"github.com/couchcryptid/crash-map-service/internal/observability"
	"github.com/couchcryptid/crash-map-service/internal/pipeline"
	"github.com/couchcryptid/crash-map-service/internal/scheduler"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
)

func main() {
	// A local .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", "crash-map")
	metrics := observability.NewMetrics()

	loader := csvfile.NewLoader(cfg.DatasetPath, logger)

	// Kafka export of the fatal subset is feature-flagged via KAFKA_ENABLED.
	var exporter pipeline.Exporter
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		exporter = writer
		logger.Info("kafka export enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka export disabled")
	}

	p := pipeline.New(loader, exporter, logger, metrics, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.WarmupOnStart {
		if _, err := p.Load(ctx); err != nil {
			logger.Error("warm-up failed", "error", err, "path", cfg.DatasetPath)
			os.Exit(1)
		}
	}

	var sched *scheduler.Scheduler
	if cfg.ReloadSchedule != "" {
		sched, err = scheduler.New(cfg.ReloadSchedule, p, logger)
		if err != nil {
			logger.Error("failed to configure reload schedule", "error", err)
			os.Exit(1)
		}
		sched.Start(ctx)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, viewFromConfig(cfg), metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if sched != nil {
		sched.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// viewFromConfig overrides the default map view with configured values.
func viewFromConfig(cfg *config.Config) crashmap.View {
	view := crashmap.DefaultView()
	view.Center = [2]float64{cfg.MapCenterLat, cfg.MapCenterLng}
	view.Zoom = cfg.MapZoom
	if cfg.StreetTilesURL != "" {
		view.StreetTiles.URL = cfg.StreetTilesURL
	}
	if cfg.MonoTilesURL != "" {
		view.MonoTiles.URL = cfg.MonoTilesURL
	}
	return view
}
