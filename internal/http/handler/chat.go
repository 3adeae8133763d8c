package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/reviewdesk/internal/http/dto"
	"basegraph.app/reviewdesk/internal/service"
)

type ChatHandler struct {
	service service.ChatService
}

func NewChatHandler(service service.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	sessionID, err := h.service.Start(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "start chat session")
		return
	}
	c.JSON(http.StatusCreated, dto.CreateSessionResponse{SessionID: sessionID})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("id")

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid chat message", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.service.Send(ctx, sessionID, req.Message)
	if err != nil {
		writeServiceError(c, err, "send chat message")
		return
	}
	c.JSON(http.StatusOK, dto.SendMessageResponse{SessionID: sessionID, Reply: reply})
}

func (h *ChatHandler) Transcript(c *gin.Context) {
	sessionID := c.Param("id")

	turns, err := h.service.Transcript(c.Request.Context(), sessionID)
	if err != nil {
		writeServiceError(c, err, "load transcript")
		return
	}

	resp := dto.TranscriptResponse{
		SessionID: sessionID,
		Turns:     make([]dto.TurnResponse, 0, len(turns)),
	}
	for _, turn := range turns {
		resp.Turns = append(resp.Turns, dto.TurnResponse{Role: string(turn.Role), Content: turn.Content})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) ClearTranscript(c *gin.Context) {
	ack, err := h.service.Clear(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "clear transcript")
		return
	}
	c.JSON(http.StatusOK, dto.ClearTranscriptResponse{Message: ack})
}

func (h *ChatHandler) EndSession(c *gin.Context) {
	if err := h.service.End(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err, "end chat session")
		return
	}
	c.Status(http.StatusNoContent)
}
