package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/reviewdesk/internal/http/handler"
	"basegraph.app/reviewdesk/internal/http/middleware"
	"basegraph.app/reviewdesk/internal/service"
)

type RouterConfig struct {
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	// RateLimiter guards /api/v1 when set.
	RateLimiter *middleware.RateLimiter
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	v1 := router.Group("/api/v1")
	if cfg.RateLimiter != nil {
		v1.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	{
		reviewHandler := handler.NewReviewHandler(services.Review())
		ReviewRouter(v1.Group("/reviews"), reviewHandler)

		chatHandler := handler.NewChatHandler(services.Chat())
		ChatRouter(v1.Group("/chat"), chatHandler)
	}
}
