package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBodyBytes caps how much of a failed response is passed through.
const maxErrorBodyBytes = 64 << 10

type ollamaGenerator struct {
	client *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func newOllamaGenerator(client *http.Client) Generator {
	return &ollamaGenerator{client: client}
}

// Generate issues a single non-streaming /api/generate call. No credential is
// needed; URL and model fall back to the local defaults.
func (g *ollamaGenerator) Generate(ctx context.Context, prompt Prompt, cfg Config) (string, error) {
	base := NormalizeBaseURL(cfg.BaseURL)
	if base == "" {
		base = DefaultOllamaURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}

	body, err := json.Marshal(&ollamaRequest{
		Model:  model,
		Prompt: prompt.Flatten(),
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", &UpstreamError{Provider: KindOllama, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &UpstreamError{Provider: KindOllama, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		msg := string(detail)
		if msg == "" {
			msg = "Ollama error"
		}
		return "", &UpstreamError{Provider: KindOllama, StatusCode: resp.StatusCode, Message: msg}
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &UpstreamError{
			Provider:   KindOllama,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decode ollama response: %v", err),
			Err:        err,
		}
	}

	return out.Response, nil
}
