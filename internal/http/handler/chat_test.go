package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/reviewdesk/internal/conversation"
	"basegraph.app/reviewdesk/internal/http/dto"
	"basegraph.app/reviewdesk/internal/http/handler"
	"basegraph.app/reviewdesk/internal/service"
)

var _ = Describe("ChatHandler", func() {
	var (
		router *gin.Engine
		svc    *mockChatService
	)

	notFound := func(sessionID string) error {
		return fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
	}

	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockChatService{}
		h := handler.NewChatHandler(svc)
		router.POST("/sessions", h.CreateSession)
		router.POST("/sessions/:id/messages", h.SendMessage)
		router.GET("/sessions/:id/transcript", h.Transcript)
		router.DELETE("/sessions/:id/transcript", h.ClearTranscript)
		router.DELETE("/sessions/:id", h.EndSession)
	})

	It("creates a session", func() {
		svc.startFn = func(context.Context) (string, error) { return "1234", nil }

		w := do(http.MethodPost, "/sessions")
		Expect(w.Code).To(Equal(http.StatusCreated))
		var resp dto.CreateSessionResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.SessionID).To(Equal("1234"))
	})

	Describe("SendMessage", func() {
		It("returns the reply", func() {
			svc.sendFn = func(_ context.Context, sessionID, message string) (string, error) {
				Expect(sessionID).To(Equal("42"))
				Expect(message).To(Equal("hello"))
				return "Hi!", nil
			}

			w := postJSON(router, "/sessions/42/messages", map[string]string{"message": "hello"})
			Expect(w.Code).To(Equal(http.StatusOK))
			var resp dto.SendMessageResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp).To(Equal(dto.SendMessageResponse{SessionID: "42", Reply: "Hi!"}))
		})

		It("returns 400 without a message", func() {
			w := postJSON(router, "/sessions/42/messages", map[string]string{"text": "hello"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for unknown sessions", func() {
			svc.sendFn = func(_ context.Context, sessionID, _ string) (string, error) {
				return "", notFound(sessionID)
			}
			w := postJSON(router, "/sessions/nope/messages", map[string]string{"message": "hello"})
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 503 when the model is unreachable", func() {
			svc.sendFn = func(context.Context, string, string) (string, error) {
				return "", fmt.Errorf("conversation send: %w", errors.New("dial tcp: i/o timeout"))
			}
			w := postJSON(router, "/sessions/42/messages", map[string]string{"message": "hello"})
			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	It("returns the transcript in order", func() {
		svc.transcriptFn = func(context.Context, string) ([]conversation.Turn, error) {
			return []conversation.Turn{
				{Role: conversation.RoleUser, Content: "hello"},
				{Role: conversation.RoleAssistant, Content: "Hi!"},
			}, nil
		}

		w := do(http.MethodGet, "/sessions/42/transcript")
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp dto.TranscriptResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Turns).To(Equal([]dto.TurnResponse{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "Hi!"},
		}))
	})

	It("renders an empty transcript as an empty list", func() {
		svc.transcriptFn = func(context.Context, string) ([]conversation.Turn, error) {
			return []conversation.Turn{}, nil
		}
		w := do(http.MethodGet, "/sessions/42/transcript")
		Expect(w.Body.String()).To(ContainSubstring(`"turns":[]`))
	})

	It("acknowledges a cleared transcript", func() {
		svc.clearFn = func(context.Context, string) (string, error) { return service.ClearedAck, nil }

		w := do(http.MethodDelete, "/sessions/42/transcript")
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp dto.ClearTranscriptResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Message).To(Equal("Memory cleared."))
	})

	It("ends sessions", func() {
		svc.endFn = func(_ context.Context, sessionID string) error {
			if sessionID == "42" {
				return nil
			}
			return notFound(sessionID)
		}

		Expect(do(http.MethodDelete, "/sessions/42").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodDelete, "/sessions/7").Code).To(Equal(http.StatusNotFound))
	})
})
