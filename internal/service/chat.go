package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/reviewdesk/common/logger"
	"basegraph.app/reviewdesk/internal/conversation"
)

const (
	OpChatStart = "chat_start"
	OpChatSend  = "chat_send"
	OpChatClear = "chat_clear"
	OpChatEnd   = "chat_end"
)

// ClearedAck is returned after a transcript is cleared.
const ClearedAck = "Memory cleared."

type ChatService interface {
	Start(ctx context.Context) (string, error)
	Send(ctx context.Context, sessionID, message string) (string, error)
	Clear(ctx context.Context, sessionID string) (string, error)
	Transcript(ctx context.Context, sessionID string) ([]conversation.Turn, error)
	End(ctx context.Context, sessionID string) error
}

type chatService struct {
	sessions *conversation.Manager
	metrics  *Metrics
}

func NewChatService(sessions *conversation.Manager, metrics *Metrics) ChatService {
	return &chatService{
		sessions: sessions,
		metrics:  metrics,
	}
}

func (s *chatService) Start(ctx context.Context) (string, error) {
	handle, _ := s.sessions.Create()
	s.metrics.Operation(OpChatStart, "success").Inc()

	ctx = withSession(ctx, OpChatStart, handle)
	slog.InfoContext(ctx, "chat session started", "active_sessions", s.sessions.Len())
	return handle, nil
}

func (s *chatService) Send(ctx context.Context, sessionID, message string) (reply string, err error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyInput
	}
	session, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}
	ctx = withSession(ctx, OpChatSend, sessionID)
	start := time.Now()
	defer func() { s.metrics.observe(OpChatSend, start, err) }()

	reply, err = session.Send(ctx, message)
	if err != nil {
		slog.ErrorContext(ctx, "chat send failed", "error", err)
		return "", err
	}

	slog.InfoContext(ctx, "chat reply generated", "turns", session.Len())
	return reply, nil
}

func (s *chatService) Clear(ctx context.Context, sessionID string) (string, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}
	session.Clear()
	s.metrics.Operation(OpChatClear, "success").Inc()

	slog.InfoContext(withSession(ctx, OpChatClear, sessionID), "chat transcript cleared")
	return ClearedAck, nil
}

func (s *chatService) Transcript(_ context.Context, sessionID string) ([]conversation.Turn, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Transcript(), nil
}

func (s *chatService) End(ctx context.Context, sessionID string) error {
	if !s.sessions.Delete(sessionID) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.metrics.Operation(OpChatEnd, "success").Inc()

	slog.InfoContext(withSession(ctx, OpChatEnd, sessionID), "chat session ended",
		"active_sessions", s.sessions.Len())
	return nil
}

func (s *chatService) lookup(sessionID string) (*conversation.Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return session, nil
}

func withSession(ctx context.Context, operation, sessionID string) context.Context {
	return logger.WithLogFields(ctx, logger.LogFields{
		Operation: logger.Ptr(operation),
		SessionID: logger.Ptr(sessionID),
	})
}
