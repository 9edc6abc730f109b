// Command main is the entry point for the publishing API server.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkpost/internal/config"
	"inkpost/internal/observability"
	"inkpost/internal/server"
)

const version = "1.0.0"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.InitLogger(cfg.Env, cfg.LogLevel)
	logger := observability.GlobalLogger

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "inkpost-api",
		ServiceVersion: version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("Tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
	if err := srv.Start(); err != nil {
		logger.Error("Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
