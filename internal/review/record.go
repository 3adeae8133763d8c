package review

import (
	"fmt"
	"strings"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentUnknown  Sentiment = "unknown"
)

// ReviewRecord is the structured judgment extracted from one customer review.
// Every field is always populated; see Normalize for the defaults.
type ReviewRecord struct {
	Sentiment Sentiment `json:"sentiment" jsonschema:"enum=positive,enum=negative,enum=neutral" jsonschema_description:"Overall sentiment of the review: positive, negative, or neutral"`
	Summary   string    `json:"summary" jsonschema_description:"One sentence summary of the review"`
	KeyIssues []string  `json:"key_issues" jsonschema_description:"Problems the customer mentions, in order; empty list if none"`
	IsUrgent  bool      `json:"is_urgent" jsonschema_description:"true if the customer needs immediate help, false otherwise"`
}

// Outcome tells whether a record came from the model's JSON or from the fallback.
type Outcome string

const (
	OutcomeParsed   Outcome = "parsed"
	OutcomeDegraded Outcome = "degraded"
)

// DefaultRecord is the record used when the model output has no usable JSON.
// The raw text becomes the summary so callers still have something to show.
func DefaultRecord(raw string) ReviewRecord {
	return ReviewRecord{
		Sentiment: SentimentUnknown,
		Summary:   raw,
		KeyIssues: []string{},
		IsUrgent:  false,
	}
}

// Normalize builds a record from decoded JSON fields, resolving absent or
// ill-typed values to their defaults.
func Normalize(fields map[string]any, raw string) ReviewRecord {
	record := DefaultRecord(raw)
	record.Sentiment = normalizeSentiment(fields["sentiment"])
	if summary, ok := fields["summary"].(string); ok && strings.TrimSpace(summary) != "" {
		record.Summary = summary
	}
	record.KeyIssues = normalizeIssues(fields["key_issues"])
	record.IsUrgent = normalizeBool(fields["is_urgent"])
	return record
}

func normalizeSentiment(v any) Sentiment {
	s, ok := v.(string)
	if !ok {
		return SentimentUnknown
	}
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	case SentimentNeutral:
		return SentimentNeutral
	default:
		return SentimentUnknown
	}
}

func normalizeIssues(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}

	issues := make([]string, 0, len(items))
	for _, item := range items {
		var issue string
		switch val := item.(type) {
		case string:
			issue = val
		case nil, map[string]any, []any:
			continue
		default:
			issue = fmt.Sprint(val)
		}
		if issue = strings.TrimSpace(issue); issue != "" {
			issues = append(issues, issue)
		}
	}
	return issues
}

func normalizeBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(strings.TrimSpace(val), "true")
	default:
		return false
	}
}
