package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/reviewdesk/internal/http/dto"
	"basegraph.app/reviewdesk/internal/service"
)

type ReviewHandler struct {
	service service.ReviewService
}

func NewReviewHandler(service service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid analyze request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := h.service.Analyze(ctx, req.Text)
	if err != nil {
		writeServiceError(c, err, "analyze review")
		return
	}

	record := analysis.Record
	c.JSON(http.StatusOK, dto.AnalyzeReviewResponse{
		Sentiment: string(record.Sentiment),
		Summary:   record.Summary,
		KeyIssues: record.KeyIssues,
		IsUrgent:  record.IsUrgent,
		Outcome:   string(analysis.Outcome),
	})
}

func (h *ReviewHandler) Pipeline(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid pipeline request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.RunPipeline(ctx, req.Text)
	if err != nil {
		writeServiceError(c, err, "run review pipeline")
		return
	}

	outputs := make([]dto.StageOutput, 0, result.Len())
	for _, key := range result.Keys() {
		value, _ := result.Get(key)
		outputs = append(outputs, dto.StageOutput{Key: key, Value: value})
	}
	c.JSON(http.StatusOK, dto.PipelineResponse{Outputs: outputs})
}
