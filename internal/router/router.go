// Package router wires HTTP routes and global middleware.
package router

import (
	"lingo-relay/internal/handler"
	"lingo-relay/internal/i18n"
	"lingo-relay/internal/middleware"
	"lingo-relay/internal/types"

	"github.com/gin-gonic/gin"
)

// NewRouter creates the gin engine with global middleware and routes.
func NewRouter(
	serverHandler *handler.Server,
	configManager types.ConfigManager,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Register global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger(configManager.GetLogConfig()))
	router.Use(middleware.RateLimiter(configManager.GetPerformanceConfig()))
	router.Use(i18n.Middleware())

	// Liveness and health
	router.GET("/", serverHandler.Root)
	router.GET("/health", serverHandler.Health)

	// Chat platform webhook
	router.POST("/webhook", serverHandler.Webhook)

	return router
}
