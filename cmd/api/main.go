package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/gkbsz/leadgate/internal/api/rest"
	"github.com/gkbsz/leadgate/internal/infrastructure/config"
	"github.com/gkbsz/leadgate/internal/infrastructure/telemetry"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := telemetry.SetupLogger(cfg.Log.Level, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Telemetry, version)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	server, err := rest.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	if err := server.Start(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
