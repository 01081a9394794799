package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipe-store/backend/config"
	"github.com/pageza/recipe-store/backend/internal/api"
	"github.com/pageza/recipe-store/backend/internal/database"
	"github.com/pageza/recipe-store/backend/internal/middleware"
	"github.com/pageza/recipe-store/backend/internal/model"
	"github.com/pageza/recipe-store/backend/internal/observability"
	"github.com/pageza/recipe-store/backend/internal/router"
	"github.com/pageza/recipe-store/backend/internal/service"
	"github.com/pageza/recipe-store/backend/internal/store"
)

// Server represents the HTTP server
type Server struct {
	cfg     *config.Config
	router  *gin.Engine
	http    *http.Server
	logger  *slog.Logger
	service *service.RecipeService
	closers []func() error
}

// Build assembles the store, service and router described by cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = observability.Discard()
	}
	s := &Server{cfg: cfg, logger: logger}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	checks := map[string]api.Check{}

	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	checks["store"] = func(ctx context.Context) error {
		_, err := st.Count(ctx)
		return err
	}

	s.service = service.NewRecipeService(st, service.UUIDGenerator{},
		service.WithMetrics(metrics),
		service.WithLogger(logger.With("component", "recipes")),
		service.WithStrictDelete(cfg.StrictDelete),
	)
	if err := s.seed(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	limiter, err := s.rateLimiter(ctx, checks)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.router = router.SetupRouter(api.NewRecipeHandler(s.service), router.Options{
		Logger:         logger.With("component", "http"),
		CORSOrigins:    cfg.CORSOrigins,
		RateLimiter:    limiter,
		Metrics:        metrics,
		MetricsHandler: observability.MetricsHandler(registry),
		HealthChecks:   checks,
	})
	s.http = &http.Server{
		Addr:    cfg.Addr(),
		Handler: s.router,
	}
	return s, nil
}

func (s *Server) openStore() (store.Store, error) {
	switch s.cfg.StoreBackend {
	case config.StoreSQLite:
		db, err := database.OpenSQLite("")
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() error { return database.CloseSQLite(db) })

		st, err := store.NewSQLStore(db)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		return st, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

func (s *Server) seed(ctx context.Context) error {
	var inputs []model.RecipeInput
	if s.cfg.SeedDefaults {
		inputs = append(inputs, store.DefaultSeed()...)
	}
	if s.cfg.SeedFile != "" {
		fromFile, err := store.LoadSeed(s.cfg.SeedFile)
		if err != nil {
			return err
		}
		inputs = append(inputs, fromFile...)
	}
	return s.service.Seed(ctx, inputs)
}

// rateLimiter picks Redis when configured, an in-process limiter otherwise,
// and nil when rate limiting is off.
func (s *Server) rateLimiter(ctx context.Context, checks map[string]api.Check) (middleware.RateLimiter, error) {
	if s.cfg.RateLimit <= 0 {
		return nil, nil
	}
	limits := middleware.RateLimitConfig{
		Window:    s.cfg.RateLimitWindow,
		Limit:     s.cfg.RateLimit,
		KeyPrefix: "rate_limit:recipes",
	}
	if !s.cfg.RedisEnabled() {
		return middleware.NewLocalRateLimiter(limits), nil
	}

	client, err := database.NewRedisClient(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, client.Close)
	checks["redis"] = redisCheck(client)
	s.logger.Info("rate limiting through redis", "limit", limits.Limit, "window", limits.Window)
	return middleware.NewRedisRateLimiter(client, limits), nil
}

func redisCheck(client *redis.Client) api.Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully. A listen
// failure also triggers shutdown so the store and Redis are released.
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown gracefully stops the HTTP server and releases the store and Redis
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	err := s.http.Shutdown(ctx)
	return errors.Join(err, s.Close())
}

// Close releases resources opened by Build.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}
