package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pricetrack/internal/shared/config"
	"pricetrack/internal/shared/logger"
	"pricetrack/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Telemetry.ServiceName, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()

	var shutdownTelemetry func(context.Context) error
	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err = telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		}, log)
		if err != nil {
			log.Warn("Telemetry disabled", zap.Error(err))
		}
	}

	deps, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		if shutdownTelemetry != nil {
			_ = shutdownTelemetry(ctx)
		}
		return err
	}

	handler := SetupRoutes(deps, cfg, log)
	srv, redirectSrv, serveErr := StartServers(NewServerConfigFromConfig(handler, cfg), log)

	// Wait for interrupt signal or a listen failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Received signal", zap.String("signal", sig.String()))
	case err = <-serveErr:
		log.Error("Server error", zap.Error(err))
	}

	GracefulShutdown(srv, redirectSrv, deps, shutdownTelemetry, shutdownTimeout, log)
	return err
}
