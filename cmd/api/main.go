package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-store/backend/config"
	"github.com/pageza/recipe-store/backend/internal/observability"
	"github.com/pageza/recipe-store/backend/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger("recipe-store", observability.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("server config",
		slog.String("environment", string(cfg.Environment)),
		slog.String("address", cfg.Addr()),
		slog.String("store", string(cfg.StoreBackend)),
		slog.Bool("seedDefaults", cfg.SeedDefaults),
		slog.String("seedFile", cfg.SeedFile),
		slog.Bool("strictDelete", cfg.StrictDelete),
		slog.Int("rateLimit", cfg.RateLimit),
		slog.Duration("rateLimitWindow", cfg.RateLimitWindow),
		slog.Bool("redis", cfg.RedisEnabled()),
	)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}
	defer srv.Close()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
