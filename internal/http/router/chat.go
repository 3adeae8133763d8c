package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/reviewdesk/internal/http/handler"
)

func ChatRouter(rg *gin.RouterGroup, h *handler.ChatHandler) {
	rg.POST("/sessions", h.CreateSession)
	rg.DELETE("/sessions/:id", h.EndSession)
	rg.POST("/sessions/:id/messages", h.SendMessage)
	rg.GET("/sessions/:id/transcript", h.Transcript)
	rg.DELETE("/sessions/:id/transcript", h.ClearTranscript)
}
