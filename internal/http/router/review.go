package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/reviewdesk/internal/http/handler"
)

func ReviewRouter(rg *gin.RouterGroup, h *handler.ReviewHandler) {
	rg.POST("/analyze", h.Analyze)
	rg.POST("/pipeline", h.Pipeline)
}
