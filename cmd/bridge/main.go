package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/presencekit/bridge/internal/activity"
	"github.com/presencekit/bridge/internal/admin"
	"github.com/presencekit/bridge/internal/bridge"
	"github.com/presencekit/bridge/internal/config"
	"github.com/presencekit/bridge/internal/host"
	"github.com/presencekit/bridge/internal/logging"
	"github.com/presencekit/bridge/internal/monitoring"
	"github.com/presencekit/bridge/internal/publisher"
	"github.com/presencekit/bridge/internal/resolver"
	"github.com/presencekit/bridge/internal/textbridge"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("presence bridge starting", zap.String("version", activity.Version))

	settings, err := config.NewSettings(cfg.Presence, cfg.TextBridge.Override)
	if err != nil {
		logger.Fatal("invalid settings", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	metrics := monitoring.New(registry)

	hostClient := host.NewClient(cfg.Host.API, logger)
	res := resolver.New(hostClient, hostClient, cfg.Metadata, logger, metrics)
	synth := activity.NewSynthesizer(res, settings, logger)
	pub := publisher.New(hostClient, logger, metrics)

	supervisor := bridge.New(bridge.Params{
		Config:      cfg.Socket,
		Synthesizer: synth,
		Publisher:   pub,
		Users:       hostClient,
		Notifier:    hostClient,
		Settings:    settings,
		Log:         logger,
		Metrics:     metrics,
	})
	relay := textbridge.New(cfg.TextBridge, settings, logger, metrics)

	adminServer := admin.New(cfg.Admin, supervisor, relay, settings, registry, metrics, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial connection attempts. Failures are expected when the companion
	// process is not running yet; the operator reconnects explicitly.
	if err := supervisor.Start(ctx); err != nil {
		logger.Info("companion not reachable at startup")
	}
	if err := relay.Connect(ctx); err != nil {
		logger.Debug("text bridge not reachable at startup")
	}

	errChan := make(chan error, 1)
	go func() {
		if err := adminServer.Run(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutting down")
	case err := <-errChan:
		logger.Error("admin surface failed", zap.Error(err))
	}

	supervisor.Stop(ctx)
	relay.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("admin shutdown error", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
