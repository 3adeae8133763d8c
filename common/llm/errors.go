package llm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

// IsRetryable reports whether an invocation failure is transient (rate limit,
// provider outage, timeout, network) as opposed to a request the provider
// rejected or the caller abandoned.
func IsRetryable(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		slog.DebugContext(ctx, "llm error not retryable: context cancelled")
		return false
	}

	if IsTimeout(err) {
		slog.WarnContext(ctx, "llm request timed out", "error", err)
		return true
	}

	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return retryableStatus(ctx, openaiErr.StatusCode)
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return retryableStatus(ctx, anthropicErr.StatusCode)
	}

	// Network errors (no API response) are generally retryable
	slog.WarnContext(ctx, "llm network error", "error", err)
	return true
}

func retryableStatus(ctx context.Context, status int) bool {
	switch {
	case status == 429:
		slog.WarnContext(ctx, "llm rate limited", "status_code", status)
		return true
	case status >= 500:
		slog.WarnContext(ctx, "llm server error", "status_code", status)
		return true
	default:
		slog.ErrorContext(ctx, "llm client error, not retryable", "status_code", status)
		return false
	}
}

// IsTimeout reports whether the invocation ran out of time, either on the
// configured request timeout or on a caller deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
