package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"basegraph.app/reviewdesk/internal/pipeline"
	"basegraph.app/reviewdesk/internal/service"
)

const serverName = "reviewdesk-mcp"

type ReviewArgs struct {
	Text string `json:"text"`
}

type AnalyzeResponse struct {
	Sentiment string   `json:"sentiment" jsonschema_description:"positive, negative, neutral or unknown"`
	Summary   string   `json:"summary" jsonschema_description:"One-sentence summary of the review"`
	KeyIssues []string `json:"key_issues" jsonschema_description:"Main issues raised by the customer"`
	IsUrgent  bool     `json:"is_urgent" jsonschema_description:"Whether the review needs urgent attention"`
	Degraded  bool     `json:"degraded" jsonschema_description:"True when the model reply was not structured and defaults were used"`
}

type PipelineResponse struct {
	Analysis string `json:"analysis" jsonschema_description:"Sentiment, issues and urgency analysis"`
	Language string `json:"language" jsonschema_description:"Detected review language"`
	Response string `json:"response" jsonschema_description:"Drafted reply to the customer"`
}

type ChatSendArgs struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type ChatSendResponse struct {
	SessionID string `json:"session_id" jsonschema_description:"Session handle to pass on the next call"`
	Reply     string `json:"reply"`
}

type ChatClearArgs struct {
	SessionID string `json:"session_id"`
}

type ChatClearResponse struct {
	Message string `json:"message"`
}

// Server exposes the review and chat services as MCP tools.
type Server struct {
	review    service.ReviewService
	chat      service.ChatService
	mcpServer *server.MCPServer
}

func NewServer(review service.ReviewService, chat service.ChatService, version string) *Server {
	s := &Server{
		review:    review,
		chat:      chat,
		mcpServer: server.NewMCPServer(serverName, version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("analyze_review",
		mcp.WithDescription("Extract sentiment, summary, key issues and urgency from a customer review."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The review text")),
		mcp.WithOutputSchema[AnalyzeResponse](),
	), mcp.NewStructuredToolHandler(s.handleAnalyze))

	s.mcpServer.AddTool(mcp.NewTool("run_review_pipeline",
		mcp.WithDescription("Analyze a review, detect its language and draft a reply in that language."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The review text")),
		mcp.WithOutputSchema[PipelineResponse](),
	), mcp.NewStructuredToolHandler(s.handlePipeline))

	s.mcpServer.AddTool(mcp.NewTool("chat_send",
		mcp.WithDescription("Send a message to the review assistant. Omit session_id to start a new conversation."),
		mcp.WithString("session_id", mcp.Description("Handle returned by a previous chat_send")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The message to send")),
		mcp.WithOutputSchema[ChatSendResponse](),
	), mcp.NewStructuredToolHandler(s.handleChatSend))

	s.mcpServer.AddTool(mcp.NewTool("chat_clear",
		mcp.WithDescription("Forget the conversation history of a chat session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session handle")),
		mcp.WithOutputSchema[ChatClearResponse](),
	), mcp.NewStructuredToolHandler(s.handleChatClear))
}

func (s *Server) handleAnalyze(ctx context.Context, _ mcp.CallToolRequest, args ReviewArgs) (AnalyzeResponse, error) {
	analysis, err := s.review.Analyze(ctx, args.Text)
	if err != nil {
		return AnalyzeResponse{}, fmt.Errorf("analyze failed: %w", err)
	}
	return AnalyzeResponse{
		Sentiment: string(analysis.Record.Sentiment),
		Summary:   analysis.Record.Summary,
		KeyIssues: analysis.Record.KeyIssues,
		IsUrgent:  analysis.Record.IsUrgent,
		Degraded:  analysis.Degraded(),
	}, nil
}

func (s *Server) handlePipeline(ctx context.Context, _ mcp.CallToolRequest, args ReviewArgs) (PipelineResponse, error) {
	result, err := s.review.RunPipeline(ctx, args.Text)
	if err != nil {
		return PipelineResponse{}, fmt.Errorf("pipeline failed: %w", err)
	}
	outputs := result.Map()
	return PipelineResponse{
		Analysis: outputs[pipeline.KeyAnalysis],
		Language: outputs[pipeline.KeyLanguage],
		Response: outputs[pipeline.KeyResponse],
	}, nil
}

func (s *Server) handleChatSend(ctx context.Context, _ mcp.CallToolRequest, args ChatSendArgs) (ChatSendResponse, error) {
	sessionID := args.SessionID
	started := sessionID == ""
	if started {
		var err error
		if sessionID, err = s.chat.Start(ctx); err != nil {
			return ChatSendResponse{}, fmt.Errorf("start session failed: %w", err)
		}
	}

	reply, err := s.chat.Send(ctx, sessionID, args.Message)
	if err != nil {
		// The caller never saw the handle of a session started here.
		if started {
			if endErr := s.chat.End(ctx, sessionID); endErr != nil {
				slog.WarnContext(ctx, "failed to end unused chat session", "session_id", sessionID, "error", endErr)
			}
		}
		return ChatSendResponse{}, fmt.Errorf("chat failed: %w", err)
	}
	return ChatSendResponse{SessionID: sessionID, Reply: reply}, nil
}

func (s *Server) handleChatClear(ctx context.Context, _ mcp.CallToolRequest, args ChatClearArgs) (ChatClearResponse, error) {
	ack, err := s.chat.Clear(ctx, args.SessionID)
	if err != nil {
		return ChatClearResponse{}, fmt.Errorf("clear failed: %w", err)
	}
	return ChatClearResponse{Message: ack}, nil
}
