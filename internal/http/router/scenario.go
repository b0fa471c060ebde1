package router

import (
	"github.com/gin-gonic/gin"

	"scenariogen.app/server/internal/http/handler"
)

func ScenarioRouter(router *gin.RouterGroup, handler *handler.GenerationHandler) {
	router.POST("", handler.Generate)
}
