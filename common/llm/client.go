package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type dispatcher struct {
	openai Generator
	ollama Generator
}

// NewDispatcher returns a Generator that routes each call to the OpenAI or
// Ollama variant according to cfg.Kind. There is no fallback between them.
func NewDispatcher(httpClient *http.Client) Generator {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &dispatcher{
		openai: newOpenAIGenerator(httpClient),
		ollama: newOllamaGenerator(httpClient),
	}
}

func (d *dispatcher) Generate(ctx context.Context, prompt Prompt, cfg Config) (string, error) {
	var g Generator
	switch cfg.Kind {
	case KindOllama:
		g = d.ollama
	case KindOpenAI, "":
		g = d.openai
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s", cfg.Kind)
	}

	start := time.Now()
	text, err := g.Generate(ctx, prompt, cfg)
	if err != nil {
		return "", err
	}

	slog.DebugContext(ctx, "llm generate completed",
		"provider", cfg.Kind,
		"model", cfg.Model,
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len(text))

	return text, nil
}
