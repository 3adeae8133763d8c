package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel      OTelConfig
	LLM       LLMConfig
	Chat      ChatConfig
	Pipeline  PipelineConfig
	RateLimit RateLimitConfig
	Env       string
	Port      string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	SampleRatio    float64
	ExportLogs     bool
}

type LLMConfig struct {
	Provider    string // "openai" or "anthropic"
	APIKey      string
	BaseURL     string // Optional: for custom endpoints
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

type ChatConfig struct {
	MaxTurns     int           // 0 = unbounded transcript
	IdleTTL      time.Duration // sessions unused for longer are dropped
	SystemPrompt string        // empty = built-in assistant preamble
}

type PipelineConfig struct {
	DefinitionFile string // empty = built-in review pipeline
}

type RateLimitConfig struct {
	RedisURL string
	Requests int
	Window   time.Duration
	Prefix   string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the HTTP server
//   - .env.cli for the command line client
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("REVIEWDESK_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:  getEnv("REVIEWDESK_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "reviewdesk"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0),
			ExportLogs:     getEnvBool("OTEL_EXPORT_LOGS", true),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "openai"),
			APIKey:      getEnv("LLM_API_KEY", os.Getenv("OPENAI_API_KEY")),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Model:       getEnv("LLM_MODEL", ""), // empty = provider default
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 1024),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0),
			Timeout:     getEnvDuration("LLM_TIMEOUT", 60*time.Second),
			MaxRetries:  getEnvInt("LLM_MAX_RETRIES", 2),
		},
		Chat: ChatConfig{
			MaxTurns:     getEnvInt("CHAT_MAX_TURNS", 40),
			IdleTTL:      getEnvDuration("CHAT_SESSION_IDLE_TTL", 30*time.Minute),
			SystemPrompt: getEnv("CHAT_SYSTEM_PROMPT", ""),
		},
		Pipeline: PipelineConfig{
			DefinitionFile: getEnv("PIPELINE_FILE", ""),
		},
		RateLimit: RateLimitConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 60),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			Prefix:   getEnv("RATE_LIMIT_PREFIX", "reviewdesk:ratelimit:"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks settings that would otherwise fail on the first request.
func (c Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY (or OPENAI_API_KEY) is required")
	}
	if c.LLM.Provider != "openai" && c.LLM.Provider != "anthropic" {
		return fmt.Errorf("LLM_PROVIDER must be openai or anthropic, got %q", c.LLM.Provider)
	}
	if c.Chat.MaxTurns < 0 || c.Chat.MaxTurns == 1 {
		return fmt.Errorf("CHAT_MAX_TURNS must be 0 (unbounded) or at least 2, got %d", c.Chat.MaxTurns)
	}
	if c.OTel.SampleRatio < 0 || c.OTel.SampleRatio > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLE_RATIO must be within [0, 1]")
	}
	if c.RateLimit.Enabled() && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c RateLimitConfig) Enabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
