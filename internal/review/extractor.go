package review

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"basegraph.app/reviewdesk/common/llm"
	"basegraph.app/reviewdesk/common/logger"
)

// Analysis is the result of one extraction. Record is always usable; Outcome
// says whether it was decoded from the model or synthesized from Raw.
type Analysis struct {
	Record  ReviewRecord
	Outcome Outcome
	Raw     string
}

func (a *Analysis) Degraded() bool {
	return a.Outcome == OutcomeDegraded
}

var formatInstructions = buildFormatInstructions()

func buildFormatInstructions() string {
	schema, err := json.MarshalIndent(llm.GenerateSchema[ReviewRecord](), "", "  ")
	if err != nil {
		panic(fmt.Sprintf("review: marshal record schema: %v", err))
	}
	return "Respond with a single JSON object and nothing else. The object must conform to this JSON Schema:\n\n" + string(schema)
}

const extractTemplate = `For the following customer review, extract the following information:

sentiment: Is the sentiment positive, negative, or neutral?
summary: Provide a one sentence summary of the review.
key_issues: List any problems mentioned (empty list if none).
is_urgent: Is immediate help needed (true or false)?

text: %s

%s`

type Extractor struct {
	llm llm.Invoker
}

func NewExtractor(invoker llm.Invoker) *Extractor {
	return &Extractor{llm: invoker}
}

// BuildPrompt renders the extraction instruction with the review embedded verbatim.
func BuildPrompt(reviewText string) string {
	return fmt.Sprintf(extractTemplate, reviewText, formatInstructions)
}

// Extract invokes the model once and parses its reply. Malformed output
// degrades to a default record; invocation failures are returned as errors.
func (e *Extractor) Extract(ctx context.Context, reviewText string) (*Analysis, error) {
	sc := logger.StartSpan(ctx, "review.extract")
	defer sc.End()
	ctx = sc.Context()

	completion, err := e.llm.Complete(ctx, llm.CompletionRequest{
		Messages: llm.Prompt(BuildPrompt(reviewText)),
	})
	if err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("review extraction: %w", err)
	}

	record, outcome := Parse(completion.Content)
	sc.SetAttributes(attribute.String("review.outcome", string(outcome)))

	return &Analysis{
		Record:  record,
		Outcome: outcome,
		Raw:     completion.Content,
	}, nil
}
