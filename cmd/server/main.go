package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/haven-shield/insight-engine/internal/automation"
	"github.com/haven-shield/insight-engine/internal/cache"
	"github.com/haven-shield/insight-engine/internal/config"
	"github.com/haven-shield/insight-engine/internal/database"
	"github.com/haven-shield/insight-engine/internal/handlers"
	"github.com/haven-shield/insight-engine/internal/kafka"
	"github.com/haven-shield/insight-engine/internal/metrics"
	"github.com/haven-shield/insight-engine/internal/pipeline"
	"github.com/haven-shield/insight-engine/internal/realtime"
	"github.com/haven-shield/insight-engine/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting insight engine",
		zap.String("environment", cfg.Environment),
		zap.Int("http_port", cfg.Server.HTTPPort))

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	repo, err := database.NewRepository(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	snapshots := cache.New(cfg.Redis, logger, collector)
	defer snapshots.Close()

	gate, err := automation.NewGateWithOverlay(logger, cfg.Automation.OverlayRules)
	if err != nil {
		logger.Fatal("invalid automation overlay rules", zap.Error(err))
	}
	engine := pipeline.New(logger, collector, gate)

	hub := realtime.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Kafka.Enabled {
		consumer, err := kafka.NewConsumer(cfg.Kafka, repo, snapshots, logger, collector)
		if err != nil {
			logger.Fatal("failed to create kafka consumer", zap.Error(err))
		}
		consumer.Start(ctx)
		defer consumer.Stop()
	}

	handler := handlers.New(repo, snapshots, engine, hub, logger, collector)
	srv := server.New(cfg, handler, hub, repo, snapshots, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("insight engine stopped")
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" && cfg.Logging.Format != "console" {
		zcfg := zap.NewProductionConfig()
		if level, err := zap.ParseAtomicLevel(cfg.Logging.Level); err == nil {
			zcfg.Level = level
		}
		return zcfg.Build()
	}
	return zap.NewDevelopment()
}
