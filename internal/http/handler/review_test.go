package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/openai/openai-go"

	"basegraph.app/reviewdesk/common/llm"
	"basegraph.app/reviewdesk/internal/http/dto"
	"basegraph.app/reviewdesk/internal/http/handler"
	"basegraph.app/reviewdesk/internal/pipeline"
	"basegraph.app/reviewdesk/internal/review"
	"basegraph.app/reviewdesk/internal/service"
)

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var _ = Describe("ReviewHandler", func() {
	var (
		router *gin.Engine
		svc    *mockReviewService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockReviewService{}
		h := handler.NewReviewHandler(svc)
		router.POST("/reviews/analyze", h.Analyze)
		router.POST("/reviews/pipeline", h.Pipeline)
	})

	Describe("Analyze", func() {
		It("returns 200 with the extracted record", func() {
			svc.analyzeFn = func(_ context.Context, text string) (*review.Analysis, error) {
				Expect(text).To(Equal("It broke after one day."))
				return &review.Analysis{
					Record: review.ReviewRecord{
						Sentiment: review.SentimentNegative,
						Summary:   "Product broke quickly.",
						KeyIssues: []string{"product defect"},
						IsUrgent:  true,
					},
					Outcome: review.OutcomeParsed,
				}, nil
			}

			w := postJSON(router, "/reviews/analyze", map[string]string{"text": "It broke after one day."})
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp dto.AnalyzeReviewResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp).To(Equal(dto.AnalyzeReviewResponse{
				Sentiment: "negative",
				Summary:   "Product broke quickly.",
				KeyIssues: []string{"product defect"},
				IsUrgent:  true,
				Outcome:   "parsed",
			}))
		})

		It("returns 400 when text is missing", func() {
			w := postJSON(router, "/reviews/analyze", map[string]string{})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 for whitespace-only text", func() {
			svc.analyzeFn = func(context.Context, string) (*review.Analysis, error) {
				return nil, service.ErrEmptyInput
			}
			w := postJSON(router, "/reviews/analyze", map[string]string{"text": "   "})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		DescribeTable("maps invocation failures",
			func(err error, status int) {
				svc.analyzeFn = func(context.Context, string) (*review.Analysis, error) {
					return nil, fmt.Errorf("review extraction: %w", err)
				}
				w := postJSON(router, "/reviews/analyze", map[string]string{"text": "fine"})
				Expect(w.Code).To(Equal(status))
			},
			Entry("network error", errors.New("connection reset"), http.StatusServiceUnavailable),
			Entry("rate limit", fmt.Errorf("openai chat: %w", &openai.Error{StatusCode: 429}), http.StatusServiceUnavailable),
			Entry("rejected request", fmt.Errorf("openai chat: %w", &openai.Error{StatusCode: 400}), http.StatusBadGateway),
			Entry("provider timeout", context.DeadlineExceeded, http.StatusGatewayTimeout),
			Entry("caller cancelled", context.Canceled, http.StatusBadGateway),
		)
	})

	Describe("Pipeline", func() {
		It("returns outputs in stage order", func() {
			svc.runPipelineFn = func(ctx context.Context, text string) (*pipeline.Result, error) {
				invoker := &stubInvoker{replies: []string{"analysis", "English", "Thanks!"}}
				p, err := pipeline.NewReviewPipeline(invoker)
				Expect(err).NotTo(HaveOccurred())
				return p.Run(ctx, map[string]string{pipeline.KeyReview: text})
			}

			w := postJSON(router, "/reviews/pipeline", map[string]string{"text": "Great!"})
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp dto.PipelineResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Outputs).To(Equal([]dto.StageOutput{
				{Key: pipeline.KeyAnalysis, Value: "analysis"},
				{Key: pipeline.KeyLanguage, Value: "English"},
				{Key: pipeline.KeyResponse, Value: "Thanks!"},
			}))
		})

		It("returns 503 when a stage fails transiently", func() {
			svc.runPipelineFn = func(context.Context, string) (*pipeline.Result, error) {
				return nil, &pipeline.StageError{Stage: "detect_language", Index: 1, Err: errors.New("timeout")}
			}
			w := postJSON(router, "/reviews/pipeline", map[string]string{"text": "Great!"})
			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})
})

// stubInvoker replies with canned outputs in call order.
type stubInvoker struct {
	replies []string
	calls   int
}

func (s *stubInvoker) Complete(context.Context, llm.CompletionRequest) (*llm.Completion, error) {
	reply := s.replies[s.calls]
	s.calls++
	return &llm.Completion{Content: reply}, nil
}

func (s *stubInvoker) Model() string {
	return "stub"
}
