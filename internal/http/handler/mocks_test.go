package handler_test

import (
	"context"

	"basegraph.app/reviewdesk/internal/conversation"
	"basegraph.app/reviewdesk/internal/pipeline"
	"basegraph.app/reviewdesk/internal/review"
)

type mockReviewService struct {
	analyzeFn     func(ctx context.Context, text string) (*review.Analysis, error)
	runPipelineFn func(ctx context.Context, text string) (*pipeline.Result, error)
}

func (m *mockReviewService) Analyze(ctx context.Context, text string) (*review.Analysis, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, text)
	}
	return nil, nil
}

func (m *mockReviewService) RunPipeline(ctx context.Context, text string) (*pipeline.Result, error) {
	if m.runPipelineFn != nil {
		return m.runPipelineFn(ctx, text)
	}
	return nil, nil
}

type mockChatService struct {
	startFn      func(ctx context.Context) (string, error)
	sendFn       func(ctx context.Context, sessionID, message string) (string, error)
	clearFn      func(ctx context.Context, sessionID string) (string, error)
	transcriptFn func(ctx context.Context, sessionID string) ([]conversation.Turn, error)
	endFn        func(ctx context.Context, sessionID string) error
}

func (m *mockChatService) Start(ctx context.Context) (string, error) {
	if m.startFn != nil {
		return m.startFn(ctx)
	}
	return "", nil
}

func (m *mockChatService) Send(ctx context.Context, sessionID, message string) (string, error) {
	if m.sendFn != nil {
		return m.sendFn(ctx, sessionID, message)
	}
	return "", nil
}

func (m *mockChatService) Clear(ctx context.Context, sessionID string) (string, error) {
	if m.clearFn != nil {
		return m.clearFn(ctx, sessionID)
	}
	return "", nil
}

func (m *mockChatService) Transcript(ctx context.Context, sessionID string) ([]conversation.Turn, error) {
	if m.transcriptFn != nil {
		return m.transcriptFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockChatService) End(ctx context.Context, sessionID string) error {
	if m.endFn != nil {
		return m.endFn(ctx, sessionID)
	}
	return nil
}
