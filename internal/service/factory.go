package service

import (
	"context"
	"fmt"
	"log/slog"

	"basegraph.app/reviewdesk/common/llm"
	"basegraph.app/reviewdesk/core/config"
	"basegraph.app/reviewdesk/internal/conversation"
	"basegraph.app/reviewdesk/internal/pipeline"
	"basegraph.app/reviewdesk/internal/review"
)

// Services owns the long-lived service instances. Chat sessions live in the
// manager, so the services are built once rather than per request.
type Services struct {
	sessions *conversation.Manager
	review   ReviewService
	chat     ChatService
}

// NewServices builds the review and chat services around one invoker. A nil
// reviewPipeline selects the built-in three-stage review pipeline.
func NewServices(invoker llm.Invoker, reviewPipeline *pipeline.Pipeline, chatCfg config.ChatConfig, metrics *Metrics) (*Services, error) {
	if reviewPipeline == nil {
		var err error
		reviewPipeline, err = pipeline.NewReviewPipeline(invoker)
		if err != nil {
			return nil, err
		}
	}

	sessions := conversation.NewManager(invoker, conversation.WithSessionOptions(
		conversation.WithSystemPrompt(chatCfg.SystemPrompt),
		conversation.WithMaxTurns(chatCfg.MaxTurns),
	))
	metrics.TrackSessions(sessions.Len)

	return &Services{
		sessions: sessions,
		review:   NewReviewService(review.NewExtractor(invoker), reviewPipeline, metrics),
		chat:     NewChatService(sessions, metrics),
	}, nil
}

func (s *Services) Review() ReviewService {
	return s.review
}

func (s *Services) Chat() ChatService {
	return s.chat
}

func (s *Services) Sessions() *conversation.Manager {
	return s.sessions
}

// NewServicesFromConfig creates the model invoker, loads PIPELINE_FILE when set
// and builds the services. Pipeline definition errors surface here, before the
// caller starts serving.
func NewServicesFromConfig(ctx context.Context, cfg config.Config, metrics *Metrics) (*Services, error) {
	invoker, err := llm.New(llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		MaxRetries:  cfg.LLM.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("creating llm invoker: %w", err)
	}
	slog.InfoContext(ctx, "llm invoker ready", "provider", cfg.LLM.Provider, "model", invoker.Model())

	var reviewPipeline *pipeline.Pipeline
	if path := cfg.Pipeline.DefinitionFile; path != "" {
		def, err := pipeline.LoadDefinitionFile(path)
		if err != nil {
			return nil, err
		}
		if reviewPipeline, err = def.BuildReviewPipeline(invoker); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "review pipeline loaded", "path", path, "name", def.Name, "stages", len(def.Stages))
	}

	return NewServices(invoker, reviewPipeline, cfg.Chat, metrics)
}
