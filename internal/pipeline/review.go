package pipeline

import "basegraph.app/reviewdesk/common/llm"

// Keys of the review pipeline.
const (
	KeyReview   = "review"
	KeyAnalysis = "analysis"
	KeyLanguage = "language"
	KeyResponse = "response"
)

const analysisTemplate = `Analyze the following customer review and provide:
- Sentiment (positive, negative, or neutral)
- Main issue (if any)
- Urgency level (high, medium, or low)

Review: {review}
`

const languageTemplate = `What language is the following review written in? Just provide the language name.

Review: {review}
`

// The response stage sees only derived fields, never the review itself.
const responseTemplate = `Based on the following analysis and detected language, write a professional customer service response.
Write the response in {language}.

Analysis: {analysis}

Customer service response:
`

// ReviewStages is the analyze → detect language → draft reply topology.
func ReviewStages() []Stage {
	return []Stage{
		{Name: "analyze", Template: analysisTemplate, OutputKey: KeyAnalysis},
		{Name: "detect_language", Template: languageTemplate, OutputKey: KeyLanguage},
		{Name: "draft_response", Template: responseTemplate, OutputKey: KeyResponse},
	}
}

// NewReviewPipeline builds the three-stage review pipeline.
func NewReviewPipeline(invoker llm.Invoker) (*Pipeline, error) {
	return New(invoker, []string{KeyReview}, ReviewStages()...)
}
