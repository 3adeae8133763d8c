package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"basegraph.app/reviewdesk/common/llm"
	"basegraph.app/reviewdesk/common/logger"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one side of an exchange.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DefaultSystemPrompt frames every chat request.
const DefaultSystemPrompt = `The following is a friendly conversation between a human and an AI that helps analyze customer reviews. ` +
	`The AI is talkative and provides lots of specific details from its context. ` +
	`If the AI does not know the answer to a question, it truthfully says it does not know.`

type Option func(*Session)

// WithSystemPrompt replaces the default system instruction.
func WithSystemPrompt(prompt string) Option {
	return func(s *Session) {
		if prompt != "" {
			s.systemPrompt = prompt
		}
	}
}

// WithMaxTurns caps the transcript at n turns by dropping the oldest
// exchanges after each successful send. 0 disables the cap. A cap of 1 is
// raised to 2 so the latest exchange is always remembered.
func WithMaxTurns(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxTurns = max(n, minMaxTurns)
		}
	}
}

// one user turn plus its reply
const minMaxTurns = 2

// WithClock overrides time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session owns one transcript. Send holds the session lock from prompt
// rendering through the append, so concurrent sends on the same session are
// applied one exchange at a time.
type Session struct {
	mu           sync.Mutex
	llm          llm.Invoker
	systemPrompt string
	maxTurns     int
	transcript   []Turn

	now      func() time.Time
	lastUsed atomic.Int64
}

func NewSession(invoker llm.Invoker, opts ...Option) *Session {
	s := &Session{
		llm:          invoker,
		systemPrompt: DefaultSystemPrompt,
		transcript:   []Turn{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.touch()
	return s
}

// Send renders system prompt + transcript + message, invokes the model once
// and records both turns. On failure the transcript is left untouched.
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	sc := logger.StartSpan(ctx, "conversation.send")
	defer sc.End()
	ctx = sc.Context()

	start := time.Now()
	completion, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Messages: s.render(message),
	})
	if err != nil {
		sc.RecordError(err)
		return "", fmt.Errorf("conversation send: %w", err)
	}

	s.transcript = append(s.transcript,
		Turn{Role: RoleUser, Content: message},
		Turn{Role: RoleAssistant, Content: completion.Content},
	)
	evicted := s.enforceLimit()
	s.touch()

	slog.DebugContext(ctx, "conversation turn recorded",
		"turns", len(s.transcript),
		"evicted_turns", evicted,
		"latency_ms", time.Since(start).Milliseconds())

	return completion.Content, nil
}

// Messages returns the message sequence Send would submit for message.
func (s *Session) Messages(message string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render(message)
}

func (s *Session) render(message string) []llm.Message {
	msgs := make([]llm.Message, 0, len(s.transcript)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: s.systemPrompt})
	for _, turn := range s.transcript {
		msgs = append(msgs, llm.Message{Role: string(turn.Role), Content: turn.Content})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: message})
}

// enforceLimit drops whole exchanges from the front so the transcript never
// starts with an assistant turn.
func (s *Session) enforceLimit() int {
	if s.maxTurns == 0 || len(s.transcript) <= s.maxTurns {
		return 0
	}
	excess := len(s.transcript) - s.maxTurns
	if excess%2 == 1 {
		excess++
	}
	kept := make([]Turn, len(s.transcript)-excess)
	copy(kept, s.transcript[excess:])
	s.transcript = kept
	return excess
}

// Clear empties the transcript. Calling it repeatedly is harmless.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = []Turn{}
	s.touch()
}

// Transcript returns a copy of the turns in arrival order.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn{}, s.transcript...)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcript)
}

// LastUsed reports the last time the session was created, sent to or cleared.
// It does not wait for an in-flight Send.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) touch() {
	s.lastUsed.Store(s.now().UnixNano())
}
