package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/reviewdesk/common/logger"
	"basegraph.app/reviewdesk/core/config"
)

var _ = Describe("WithLogFields", func() {
	It("returns empty fields for a bare context", func() {
		Expect(logger.GetLogFields(context.Background())).To(Equal(logger.LogFields{}))
	})

	It("merges newer values over existing ones", func() {
		ctx := logger.WithLogFields(context.Background(), logger.LogFields{
			SessionID: logger.Ptr("42"),
			Operation: logger.Ptr("chat_send"),
			Component: "reviewdesk.http",
		})
		ctx = logger.WithLogFields(ctx, logger.LogFields{
			Stage:     logger.Ptr("language"),
			Component: "reviewdesk.pipeline",
		})

		fields := logger.GetLogFields(ctx)
		Expect(*fields.SessionID).To(Equal("42"))
		Expect(*fields.Operation).To(Equal("chat_send"))
		Expect(*fields.Stage).To(Equal("language"))
		Expect(fields.Component).To(Equal("reviewdesk.pipeline"))
	})
})

var _ = Describe("TraceHandler", func() {
	It("adds context fields to every record", func() {
		var buf bytes.Buffer
		log := slog.New(logger.NewTraceHandler(slog.NewJSONHandler(&buf, nil)))

		ctx := logger.WithLogFields(context.Background(), logger.LogFields{
			SessionID: logger.Ptr("7"),
			Stage:     logger.Ptr("analysis"),
			Component: "reviewdesk.pipeline",
		})
		log.InfoContext(ctx, "stage completed", "latency_ms", 12)

		var entry map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
		Expect(entry).To(HaveKeyWithValue("session_id", "7"))
		Expect(entry).To(HaveKeyWithValue("stage", "analysis"))
		Expect(entry).To(HaveKeyWithValue("component", "reviewdesk.pipeline"))
		Expect(entry).NotTo(HaveKey("trace_id"))
	})
})

var _ = Describe("NewHandler", func() {
	It("writes JSON in production", func() {
		var buf bytes.Buffer
		log := slog.New(logger.NewHandler(config.Config{Env: "production"}, &buf))
		log.Info("hello")

		Expect(json.Valid(bytes.TrimSpace(buf.Bytes()))).To(BeTrue())
	})

	It("logs debug in development", func() {
		var buf bytes.Buffer
		log := slog.New(logger.NewHandler(config.Config{Env: "development"}, &buf))
		log.Debug("verbose")

		Expect(buf.String()).To(ContainSubstring("verbose"))
	})
})

var _ = Describe("Truncate", func() {
	DescribeTable("truncates long strings",
		func(input string, maxLen int, expected string) {
			Expect(logger.Truncate(input, maxLen)).To(Equal(expected))
		},
		Entry("short string unchanged", "abc", 5, "abc"),
		Entry("exact length unchanged", "abcde", 5, "abcde"),
		Entry("long string cut", "abcdefgh", 3, "abc..."),
	)
})
