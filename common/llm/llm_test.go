package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/reviewdesk/common/llm"
)

var _ = Describe("New", func() {
	It("requires an API key", func() {
		invoker, err := llm.New(llm.Config{Provider: llm.ProviderOpenAI})
		Expect(err).To(HaveOccurred())
		Expect(invoker).To(BeNil())
	})

	It("rejects unknown providers", func() {
		_, err := llm.New(llm.Config{Provider: "cohere", APIKey: "sk-test"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})

	DescribeTable("selects the provider and default model",
		func(provider, expectedModel string) {
			invoker, err := llm.New(llm.Config{Provider: provider, APIKey: "sk-test"})
			Expect(err).NotTo(HaveOccurred())
			Expect(invoker.Model()).To(Equal(expectedModel))
		},
		Entry("empty provider falls back to openai", "", "gpt-4o-mini"),
		Entry("openai", llm.ProviderOpenAI, "gpt-4o-mini"),
		Entry("anthropic", llm.ProviderAnthropic, "claude-sonnet-4-5-20250514"),
	)

	It("keeps an explicit model", func() {
		invoker, err := llm.New(llm.Config{APIKey: "sk-test", Model: "gpt-4.1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(invoker.Model()).To(Equal("gpt-4.1"))
	})
})

var _ = Describe("openai invoker", func() {
	var (
		server *httptest.Server
		sent   map[string]any
	)

	BeforeEach(func() {
		sent = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(HaveSuffix("/chat/completions"))
			Expect(json.NewDecoder(r.Body).Decode(&sent)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",` +
				`"choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}],` +
				`"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
		}))
		DeferCleanup(server.Close)
	})

	newInvoker := func(temperature float64) llm.Invoker {
		invoker, err := llm.New(llm.Config{
			APIKey:      "sk-test",
			BaseURL:     strings.TrimSuffix(server.URL, "/") + "/v1/",
			Temperature: temperature,
			MaxRetries:  0,
		})
		Expect(err).NotTo(HaveOccurred())
		return invoker
	}

	It("applies the configured temperature when the request leaves it unset", func() {
		completion, err := newInvoker(0.7).Complete(context.Background(), llm.CompletionRequest{Messages: llm.Prompt("hello")})
		Expect(err).NotTo(HaveOccurred())
		Expect(completion.Content).To(Equal("hi"))
		Expect(completion.FinishReason).To(Equal("stop"))
		Expect(sent["temperature"]).To(BeNumerically("~", 0.7))
	})

	It("lets a request override the configured temperature", func() {
		_, err := newInvoker(0.7).Complete(context.Background(), llm.CompletionRequest{
			Messages:    llm.Prompt("hello"),
			Temperature: llm.Temp(0.2),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(sent["temperature"]).To(BeNumerically("~", 0.2))
	})
})

var _ = Describe("Prompt", func() {
	It("wraps text as a single user message", func() {
		msgs := llm.Prompt("hello")
		Expect(msgs).To(Equal([]llm.Message{{Role: llm.RoleUser, Content: "hello"}}))
	})
})

var _ = Describe("GenerateSchema", func() {
	type sample struct {
		Name string `json:"name"`
	}

	It("reflects an object schema with the json field names", func() {
		schema := llm.GenerateSchema[sample]()
		Expect(schema.Type).To(Equal("object"))
		_, ok := schema.Properties.Get("name")
		Expect(ok).To(BeTrue())
	})
})

var _ = Describe("IsRetryable", func() {
	ctx := context.Background()

	It("is false for nil", func() {
		Expect(llm.IsRetryable(ctx, nil)).To(BeFalse())
	})

	It("is false when the caller cancelled", func() {
		Expect(llm.IsRetryable(ctx, fmt.Errorf("openai chat: %w", context.Canceled))).To(BeFalse())
	})

	It("treats request timeouts as transient", func() {
		err := fmt.Errorf("anthropic messages: %w", context.DeadlineExceeded)
		Expect(llm.IsTimeout(err)).To(BeTrue())
		Expect(llm.IsRetryable(ctx, err)).To(BeTrue())
		Expect(llm.IsTimeout(errors.New("connection reset by peer"))).To(BeFalse())
	})

	DescribeTable("classifies openai status codes",
		func(status int, expected bool) {
			err := fmt.Errorf("openai chat: %w", &openai.Error{StatusCode: status})
			Expect(llm.IsRetryable(ctx, err)).To(Equal(expected))
		},
		Entry("rate limited", 429, true),
		Entry("server error", 503, true),
		Entry("bad request", 400, false),
		Entry("unauthorized", 401, false),
	)

	DescribeTable("classifies anthropic status codes",
		func(status int, expected bool) {
			err := fmt.Errorf("anthropic messages: %w", &anthropic.Error{StatusCode: status})
			Expect(llm.IsRetryable(ctx, err)).To(Equal(expected))
		},
		Entry("overloaded", 529, true),
		Entry("not found", 404, false),
	)

	It("treats unknown errors as network failures", func() {
		Expect(llm.IsRetryable(ctx, errors.New("connection reset by peer"))).To(BeTrue())
	})
})
