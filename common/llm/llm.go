package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Config holds LLM client configuration.
type Config struct {
	Provider    string        // "openai" or "anthropic"
	APIKey      string        // Required: API key for the provider
	BaseURL     string        // Optional: custom API endpoint
	Model       string        // Model name (e.g., "gpt-4o-mini", "claude-sonnet-4-5-20250514")
	MaxTokens   int           // Optional: completion budget per call
	Temperature float64       // 0 = deterministic
	Timeout     time.Duration // Optional: per-request timeout enforced by the SDK
	MaxRetries  int           // SDK-level retries; negative leaves the SDK default
}

// Invoker turns a rendered prompt or message sequence into generated text.
// Implementations surface transport, rate-limit and timeout problems as errors.
type Invoker interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Model() string
}

// CompletionRequest contains the conversation to send to the model.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature *float64 // nil = invoker default
}

// Message represents a conversation message.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// Completion contains the model's reply.
type Completion struct {
	Content          string
	FinishReason     string // "stop", "length", ...
	PromptTokens     int
	CompletionTokens int
}

// New creates an Invoker for the configured provider.
// Defaults to OpenAI if no provider is specified.
func New(cfg Config) (Invoker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAIInvoker(cfg), nil
	case ProviderAnthropic:
		return newAnthropicInvoker(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// Prompt wraps a single rendered prompt as a one-message conversation.
func Prompt(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}

// GenerateSchema generates a JSON schema for T.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}
