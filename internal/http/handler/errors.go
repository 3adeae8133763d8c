package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/reviewdesk/common/llm"
	"basegraph.app/reviewdesk/internal/service"
)

// writeServiceError maps service failures onto status codes. Model timeouts
// become 504, other failures that may succeed on retry 503, and everything
// else from the model 502.
func writeServiceError(c *gin.Context, err error, action string) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, service.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "chat session not found"})
	case llm.IsTimeout(err):
		slog.WarnContext(ctx, "model timed out", "action", action, "error", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "model provider timed out, retry later"})
	case llm.IsRetryable(ctx, err):
		slog.WarnContext(ctx, "model temporarily unavailable", "action", action, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model provider unavailable, retry later"})
	default:
		slog.ErrorContext(ctx, "request failed", "action", action, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to " + action})
	}
}
