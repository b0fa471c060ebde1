package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scenariogen.app/server/internal/http/handler"
	"scenariogen.app/server/internal/http/middleware"
	"scenariogen.app/server/internal/service"
)

type RouterConfig struct {
	TraceHeaderName string
	MaxBodyBytes    int64
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", handler.Health)
	router.GET("/schema", handler.Schema)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	generationHandler := handler.NewGenerationHandler(services.Generation(), cfg.TraceHeaderName)
	limit := middleware.BodyLimit(cfg.MaxBodyBytes)

	// path used by the existing browser extension
	router.POST("/generate-scenario", limit, generationHandler.Generate)

	v1 := router.Group("/api/v1")
	{
		ScenarioRouter(v1.Group("/scenarios", limit), generationHandler)
	}
}
