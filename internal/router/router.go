package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-store/backend/internal/api"
	"github.com/pageza/recipe-store/backend/internal/middleware"
	"github.com/pageza/recipe-store/backend/internal/observability"
)

// Options carries the optional pieces of the router.
type Options struct {
	Logger         *slog.Logger
	CORSOrigins    []string
	RateLimiter    middleware.RateLimiter
	Metrics        *observability.Metrics
	MetricsHandler http.Handler
	HealthChecks   map[string]api.Check
}

// SetupRouter configures the application routes
func SetupRouter(recipeHandler *api.RecipeHandler, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = observability.Discard()
	}

	router := gin.New()
	router.Use(
		middleware.RequestLogger(logger),
		middleware.ErrorHandler(logger),
		middleware.CORS(opts.CORSOrigins),
	)

	// System routes
	api.NewHealthHandler(opts.HealthChecks).RegisterRoutes(router)
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	// Recipe routes, writes behind the rate limiter when one is configured
	var guard gin.HandlerFunc
	if opts.RateLimiter != nil {
		guard = middleware.RateLimitMiddleware(opts.RateLimiter, opts.Metrics)
	}
	recipeHandler.RegisterRoutes(router, guard)

	return router
}
