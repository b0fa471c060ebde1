package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"scenariogen.app/server/common/llm"
)

var testPrompt = llm.Prompt{System: "system rules", User: "URL: https://example.com"}

var _ = Describe("ParseKind", func() {
	DescribeTable("maps provider names",
		func(input string, expected llm.Kind) {
			Expect(llm.ParseKind(input)).To(Equal(expected))
		},
		Entry("empty defaults to openai", "", llm.KindOpenAI),
		Entry("openai", "openai", llm.KindOpenAI),
		Entry("ollama", "ollama", llm.KindOllama),
		Entry("ollama with padding", "  ollama ", llm.KindOllama),
		Entry("unknown falls back to openai", "anthropic", llm.KindOpenAI),
	)
})

var _ = Describe("NormalizeBaseURL", func() {
	DescribeTable("strips trailing slashes",
		func(input, expected string) {
			Expect(llm.NormalizeBaseURL(input)).To(Equal(expected))
		},
		Entry("single slash", "http://host:1234/", "http://host:1234"),
		Entry("many slashes", "http://host:1234///", "http://host:1234"),
		Entry("no slash", "http://host:1234", "http://host:1234"),
		Entry("path kept", "http://host:1234/ollama/", "http://host:1234/ollama"),
		Entry("empty", "", ""),
	)
})

var _ = Describe("Prompt", func() {
	It("flattens system and user with a blank line", func() {
		Expect(testPrompt.Flatten()).To(Equal("system rules\n\nURL: https://example.com"))
	})
})

var _ = Describe("Dispatcher", func() {
	var (
		ctx        context.Context
		dispatcher llm.Generator
		calls      atomic.Int32
	)

	BeforeEach(func() {
		ctx = context.Background()
		dispatcher = llm.NewDispatcher(nil)
		calls.Store(0)
	})

	Describe("ollama", func() {
		It("posts a flat non-streaming prompt and returns the response field", func() {
			var (
				got          map[string]any
				method, path string
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				method, path = r.Method, r.URL.Path
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"response":"Feature: ok","done":true}`))
			}))
			defer srv.Close()

			text, err := dispatcher.Generate(ctx, testPrompt, llm.Config{
				Kind:    llm.KindOllama,
				BaseURL: srv.URL + "/",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Feature: ok"))
			Expect(calls.Load()).To(Equal(int32(1)))
			Expect(method).To(Equal(http.MethodPost))
			Expect(path).To(Equal("/api/generate"))
			Expect(got["model"]).To(Equal(llm.DefaultOllamaModel))
			Expect(got["prompt"]).To(Equal("system rules\n\nURL: https://example.com"))
			Expect(got["stream"]).To(BeFalse())
		})

		It("uses the requested model", func() {
			var got map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&got)
				_, _ = w.Write([]byte(`{"response":"x"}`))
			}))
			defer srv.Close()

			_, err := dispatcher.Generate(ctx, testPrompt, llm.Config{Kind: llm.KindOllama, BaseURL: srv.URL, Model: "llama3"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got["model"]).To(Equal("llama3"))
		})

		It("passes the response body through on a non-2xx status", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"model 'codellama' not found"}`))
			}))
			defer srv.Close()

			_, err := dispatcher.Generate(ctx, testPrompt, llm.Config{Kind: llm.KindOllama, BaseURL: srv.URL})

			var upstream *llm.UpstreamError
			Expect(errors.As(err, &upstream)).To(BeTrue())
			Expect(upstream.Provider).To(Equal(llm.KindOllama))
			Expect(upstream.StatusCode).To(Equal(http.StatusNotFound))
			Expect(upstream.Error()).To(Equal(`{"error":"model 'codellama' not found"}`))
			Expect(calls.Load()).To(Equal(int32(1)))
		})

		It("passes the error body through verbatim up to a size cap", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("  model runner crashed\n" + strings.Repeat("x", 128<<10)))
			}))
			defer srv.Close()

			_, err := dispatcher.Generate(ctx, testPrompt, llm.Config{Kind: llm.KindOllama, BaseURL: srv.URL})

			var upstream *llm.UpstreamError
			Expect(errors.As(err, &upstream)).To(BeTrue())
			Expect(upstream.Message).To(HavePrefix("  model runner crashed\n"))
			Expect(upstream.Message).To(HaveLen(64 << 10))
		})

		It("uses a generic message when the error body is empty", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer srv.Close()

			_, err := dispatcher.Generate(ctx, testPrompt, llm.Config{Kind: llm.KindOllama, BaseURL: srv.URL})
			Expect(err).To(MatchError("Ollama error"))
		})

		It("reports an unreachable backend as an upstream error", func() {
			srv := httptest.NewServer(http.NotFoundHandler())
			url := srv.URL
			srv.Close()

			_, err := dispatcher.Generate(ctx, testPrompt, llm.Config{Kind: llm.KindOllama, BaseURL: url})

			var upstream *llm.UpstreamError
			Expect(errors.As(err, &upstream)).To(BeTrue())
			Expect(upstream.StatusCode).To(BeZero())
		})
	})

	Describe("openai", func() {
		It("fails fast without a credential and makes no call", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			}))
			defer srv.Close()

			_, err := dispatcher.Generate(ctx, testPrompt, llm.Config{Kind: llm.KindOpenAI, BaseURL: srv.URL})
			Expect(err).To(MatchError(llm.ErrBackendUnconfigured))
			Expect(calls.Load()).To(BeZero())
		})

		It("treats an empty kind as openai", func() {
			_, err := dispatcher.Generate(ctx, testPrompt, llm.Config{})
			Expect(err).To(MatchError(llm.ErrBackendUnconfigured))
		})

		It("sends system then user messages and returns the output text", func() {
			var (
				got        map[string]any
				path, auth string
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				path, auth = r.URL.Path, r.Header.Get("Authorization")
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &got)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(responsesBody("Feature: Link visibility")))
			}))
			defer srv.Close()

			text, err := dispatcher.Generate(ctx, testPrompt, llm.Config{
				Kind:    llm.KindOpenAI,
				APIKey:  "sk-test",
				BaseURL: srv.URL,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Feature: Link visibility"))
			Expect(calls.Load()).To(Equal(int32(1)))
			Expect(path).To(HaveSuffix("/responses"))
			Expect(auth).To(Equal("Bearer sk-test"))

			Expect(got["model"]).To(Equal(llm.DefaultOpenAIModel))
			input, ok := got["input"].([]any)
			Expect(ok).To(BeTrue())
			Expect(input).To(HaveLen(2))
			Expect(input[0]).To(HaveKeyWithValue("role", "system"))
			Expect(input[0]).To(HaveKeyWithValue("content", "system rules"))
			Expect(input[1]).To(HaveKeyWithValue("role", "user"))
			Expect(input[1]).To(HaveKeyWithValue("content", "URL: https://example.com"))
		})

		It("uses the requested model", func() {
			var got map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(responsesBody("ok")))
			}))
			defer srv.Close()

			_, err := dispatcher.Generate(ctx, testPrompt, llm.Config{
				Kind: llm.KindOpenAI, APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4.1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(got["model"]).To(Equal("gpt-4.1"))
		})

		It("passes the backend error through without retrying", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"message":"The server had an error","type":"server_error","code":null,"param":null}}`))
			}))
			defer srv.Close()

			_, err := dispatcher.Generate(ctx, testPrompt, llm.Config{
				Kind: llm.KindOpenAI, APIKey: "sk-test", BaseURL: srv.URL,
			})

			var upstream *llm.UpstreamError
			Expect(errors.As(err, &upstream)).To(BeTrue())
			Expect(upstream.Provider).To(Equal(llm.KindOpenAI))
			Expect(upstream.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(upstream.Error()).To(ContainSubstring("The server had an error"))
			Expect(calls.Load()).To(Equal(int32(1)))
		})
	})

	It("rejects an unknown kind", func() {
		_, err := dispatcher.Generate(ctx, testPrompt, llm.Config{Kind: "bedrock"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})
})

func responsesBody(text string) string {
	out, _ := json.Marshal(map[string]any{
		"id":         "resp_1",
		"object":     "response",
		"created_at": 1700000000,
		"status":     "completed",
		"model":      "gpt-4o-mini",
		"output": []any{
			map[string]any{
				"type":   "message",
				"id":     "msg_1",
				"status": "completed",
				"role":   "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text, "annotations": []any{}},
				},
			},
		},
	})
	return string(out)
}
