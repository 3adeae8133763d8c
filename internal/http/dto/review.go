package dto

type ReviewRequest struct {
	Text string `json:"text" binding:"required"`
}

type AnalyzeReviewResponse struct {
	Sentiment string   `json:"sentiment"`
	Summary   string   `json:"summary"`
	KeyIssues []string `json:"key_issues"`
	IsUrgent  bool     `json:"is_urgent"`
	Outcome   string   `json:"outcome"`
}

type StageOutput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PipelineResponse lists stage outputs in declaration order.
type PipelineResponse struct {
	Outputs []StageOutput `json:"outputs"`
}
