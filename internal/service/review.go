package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/reviewdesk/common/logger"
	"basegraph.app/reviewdesk/internal/pipeline"
	"basegraph.app/reviewdesk/internal/review"
)

const (
	OpAnalyze     = "analyze"
	OpRunPipeline = "run_pipeline"
)

type ReviewService interface {
	Analyze(ctx context.Context, text string) (*review.Analysis, error)
	RunPipeline(ctx context.Context, text string) (*pipeline.Result, error)
}

type reviewService struct {
	extractor *review.Extractor
	pipeline  *pipeline.Pipeline
	metrics   *Metrics
}

// NewReviewService wires the extractor and a pipeline that accepts a single
// "review" input.
func NewReviewService(extractor *review.Extractor, p *pipeline.Pipeline, metrics *Metrics) ReviewService {
	return &reviewService{
		extractor: extractor,
		pipeline:  p,
		metrics:   metrics,
	}
}

func (s *reviewService) Analyze(ctx context.Context, text string) (analysis *review.Analysis, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{Operation: logger.Ptr(OpAnalyze)})
	start := time.Now()
	defer func() { s.metrics.observe(OpAnalyze, start, err) }()

	analysis, err = s.extractor.Extract(ctx, text)
	if err != nil {
		slog.ErrorContext(ctx, "review analysis failed", "error", err)
		return nil, err
	}

	if analysis.Degraded() {
		s.metrics.degraded.Inc()
		slog.WarnContext(ctx, "model output was not structured, returning default record",
			"raw_preview", logger.Truncate(strings.TrimSpace(analysis.Raw), 200))
	}

	slog.InfoContext(ctx, "review analyzed",
		"sentiment", analysis.Record.Sentiment,
		"is_urgent", analysis.Record.IsUrgent,
		"key_issues", len(analysis.Record.KeyIssues),
		"outcome", analysis.Outcome,
		"latency_ms", time.Since(start).Milliseconds())

	return analysis, nil
}

func (s *reviewService) RunPipeline(ctx context.Context, text string) (result *pipeline.Result, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{Operation: logger.Ptr(OpRunPipeline)})
	start := time.Now()
	defer func() { s.metrics.observe(OpRunPipeline, start, err) }()

	result, err = s.pipeline.Run(ctx, map[string]string{pipeline.KeyReview: text})
	if err != nil {
		slog.ErrorContext(ctx, "review pipeline failed", "error", err)
		return nil, fmt.Errorf("running review pipeline: %w", err)
	}

	slog.InfoContext(ctx, "review pipeline completed", "outputs", result.Len())
	return result, nil
}
