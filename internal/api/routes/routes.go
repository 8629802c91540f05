// Package routes defines the HTTP routes of the travel agent.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tripwise/travel-agent/internal/api/handlers"
	"github.com/tripwise/travel-agent/internal/api/middleware"
)

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler *handlers.HealthHandler
	ChatHandler   *handlers.ChatHandler
	TravelHandler *handlers.TravelHandler

	// RateLimiter guards the chat endpoints. Nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
	// EnableDocs mounts the Swagger UI under /docs.
	EnableDocs bool
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	{
		api.GET("/health", cfg.HealthHandler.Health)
		api.GET("/ready", cfg.HealthHandler.Ready)
		api.GET("/live", cfg.HealthHandler.Live)

		api.GET("/travel-destinations", cfg.TravelHandler.Destinations)
		api.GET("/functions", cfg.TravelHandler.Functions)

		chat := api.Group("")
		if cfg.RateLimiter != nil {
			chat.Use(cfg.RateLimiter.Middleware())
		}
		{
			chat.POST("/chat", cfg.ChatHandler.Chat)
			chat.POST("/reset-chat", cfg.ChatHandler.ResetChat)
			chat.GET("/session-status", cfg.ChatHandler.SessionStatus)
		}
	}

	r.NoRoute(middleware.NotFound())
	r.NoMethod(middleware.MethodNotAllowed())
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, cors middleware.CORSConfig, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware) {
	r.HandleMethodNotAllowed = true

	r.Use(loggingMw.RequestLogger())
	r.Use(loggingMw.Logger())
	r.Use(errorMw.Recovery())
	r.Use(middleware.NewCORSMiddleware(cors))

	Setup(r, cfg)
}
