package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind selects which backend protocol serves a request.
type Kind string

const (
	KindOpenAI Kind = "openai"
	KindOllama Kind = "ollama"
)

// ParseKind maps a caller-supplied provider name to a Kind.
// Anything other than "ollama" is served by the OpenAI-compatible backend.
func ParseKind(s string) Kind {
	if strings.TrimSpace(s) == string(KindOllama) {
		return KindOllama
	}
	return KindOpenAI
}

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "codellama"
)

// ErrBackendUnconfigured is returned without any network I/O when the
// selected backend lacks a required credential.
var ErrBackendUnconfigured = errors.New("backend is not configured")

// Config is the per-request provider configuration. It is built from the
// request plus process defaults and never shared between requests.
type Config struct {
	Kind    Kind
	Model   string // empty uses the backend default
	BaseURL string // optional: custom API endpoint
	APIKey  string // required for openai, ignored by ollama
}

// Prompt is the backend-facing pair of instructions.
type Prompt struct {
	System string
	User   string
}

// Flatten joins both instructions with a blank line for backends that take a
// single prompt string.
func (p Prompt) Flatten() string {
	return p.System + "\n\n" + p.User
}

// Generator performs exactly one outbound generation call and returns the
// backend's raw text.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt, cfg Config) (string, error)
}

// UpstreamError is a transport or application error reported by a reachable
// backend. Message carries the backend's own wording.
type UpstreamError struct {
	Provider   Kind
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s backend error", e.Provider)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NormalizeBaseURL strips trailing slashes from a backend base URL.
func NormalizeBaseURL(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}
