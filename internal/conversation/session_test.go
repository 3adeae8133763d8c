package conversation_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/reviewdesk/common/llm"
	"basegraph.app/reviewdesk/internal/conversation"
)

var _ = Describe("Session", func() {
	var (
		ctx     context.Context
		invoker *mockInvoker
		session *conversation.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		invoker = &mockInvoker{completeFn: echo}
		session = conversation.NewSession(invoker)
	})

	Describe("Send", func() {
		It("records the user and assistant turns", func() {
			reply, err := session.Send(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal("re: hello"))

			Expect(session.Transcript()).To(Equal([]conversation.Turn{
				{Role: conversation.RoleUser, Content: "hello"},
				{Role: conversation.RoleAssistant, Content: "re: hello"},
			}))
		})

		It("renders system prompt, history, then the new message", func() {
			_, err := session.Send(ctx, "first")
			Expect(err).NotTo(HaveOccurred())
			_, err = session.Send(ctx, "second")
			Expect(err).NotTo(HaveOccurred())

			msgs := invoker.lastRequest().Messages
			Expect(msgs).To(Equal([]llm.Message{
				{Role: llm.RoleSystem, Content: conversation.DefaultSystemPrompt},
				{Role: llm.RoleUser, Content: "first"},
				{Role: llm.RoleAssistant, Content: "re: first"},
				{Role: llm.RoleUser, Content: "second"},
			}))
			Expect(session.Len()).To(Equal(4))
		})

		It("leaves the transcript untouched when the model fails", func() {
			_, err := session.Send(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())

			boom := errors.New("rate limited")
			invoker.completeFn = func(context.Context, llm.CompletionRequest) (*llm.Completion, error) {
				return nil, boom
			}
			_, err = session.Send(ctx, "again")
			Expect(err).To(MatchError(boom))
			Expect(session.Len()).To(Equal(2))
		})

		It("treats an empty message as a normal turn", func() {
			reply, err := session.Send(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal("re: "))
			Expect(session.Transcript()).To(Equal([]conversation.Turn{
				{Role: conversation.RoleUser, Content: ""},
				{Role: conversation.RoleAssistant, Content: "re: "},
			}))
		})

		It("uses a custom system prompt", func() {
			custom := conversation.NewSession(invoker, conversation.WithSystemPrompt("Be brief."))
			_, err := custom.Send(ctx, "hi")
			Expect(err).NotTo(HaveOccurred())
			Expect(invoker.lastRequest().Messages[0].Content).To(Equal("Be brief."))
		})

		It("serializes concurrent sends on one session", func() {
			var wg sync.WaitGroup
			for i := range 20 {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := session.Send(ctx, fmt.Sprintf("msg-%d", i))
					Expect(err).NotTo(HaveOccurred())
				}(i)
			}
			wg.Wait()

			turns := session.Transcript()
			Expect(turns).To(HaveLen(40))
			for i := 0; i < len(turns); i += 2 {
				Expect(turns[i].Role).To(Equal(conversation.RoleUser))
				Expect(turns[i+1].Content).To(Equal("re: " + turns[i].Content))
			}
		})
	})

	Describe("Clear", func() {
		It("empties the transcript and is idempotent", func() {
			_, err := session.Send(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())

			session.Clear()
			Expect(session.Transcript()).To(BeEmpty())
			session.Clear()
			Expect(session.Len()).To(Equal(0))

			_, err = session.Send(ctx, "fresh")
			Expect(err).NotTo(HaveOccurred())
			Expect(invoker.lastRequest().Messages).To(HaveLen(2))
		})
	})

	Describe("Transcript", func() {
		It("returns a copy", func() {
			_, err := session.Send(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())

			turns := session.Transcript()
			turns[0].Content = "mutated"
			Expect(session.Transcript()[0].Content).To(Equal("hello"))
		})
	})

	Describe("WithMaxTurns", func() {
		It("drops the oldest exchanges", func() {
			capped := conversation.NewSession(invoker, conversation.WithMaxTurns(4))
			for _, msg := range []string{"one", "two", "three"} {
				_, err := capped.Send(ctx, msg)
				Expect(err).NotTo(HaveOccurred())
			}

			turns := capped.Transcript()
			Expect(turns).To(HaveLen(4))
			Expect(turns[0]).To(Equal(conversation.Turn{Role: conversation.RoleUser, Content: "two"}))
			Expect(turns[3].Content).To(Equal("re: three"))
		})

		It("never leaves a leading assistant turn for odd caps", func() {
			capped := conversation.NewSession(invoker, conversation.WithMaxTurns(3))
			for _, msg := range []string{"one", "two"} {
				_, err := capped.Send(ctx, msg)
				Expect(err).NotTo(HaveOccurred())
			}
			turns := capped.Transcript()
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].Role).To(Equal(conversation.RoleUser))
		})

		It("keeps the latest exchange when capped at one turn", func() {
			capped := conversation.NewSession(invoker, conversation.WithMaxTurns(1))
			_, err := capped.Send(ctx, "my name is Sam")
			Expect(err).NotTo(HaveOccurred())
			Expect(capped.Transcript()).To(Equal([]conversation.Turn{
				{Role: conversation.RoleUser, Content: "my name is Sam"},
				{Role: conversation.RoleAssistant, Content: "re: my name is Sam"},
			}))

			_, err = capped.Send(ctx, "what is my name?")
			Expect(err).NotTo(HaveOccurred())
			// system + remembered exchange + new message
			Expect(invoker.lastRequest().Messages).To(HaveLen(4))
			Expect(invoker.lastRequest().Messages[1].Content).To(Equal("my name is Sam"))
			Expect(capped.Len()).To(Equal(2))
		})
	})

	It("tracks last use with the injected clock", func() {
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		s := conversation.NewSession(invoker, conversation.WithClock(func() time.Time { return now }))
		Expect(s.LastUsed()).To(BeTemporally("==", now))

		now = now.Add(time.Minute)
		_, err := s.Send(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.LastUsed()).To(BeTemporally("==", now))
	})
})
