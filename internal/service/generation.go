package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"scenariogen.app/server/common/id"
	"scenariogen.app/server/common/llm"
	"scenariogen.app/server/common/logger"
	"scenariogen.app/server/common/metrics"
	"scenariogen.app/server/core/config"
	"scenariogen.app/server/internal/scenario"
)

// ErrOpenAIUnconfigured is the caller-facing detail for a missing OpenAI key.
const ErrOpenAIUnconfigured = "OpenAI is not configured. Set OPENAI_API_KEY or use provider=ollama."

type GenerationService interface {
	// Generate runs resolve, compose, dispatch and normalize for one request.
	// Errors are always *scenario.Failure.
	Generate(ctx context.Context, req scenario.GenerationRequest, opts GenerateOptions) (*GenerationResult, error)
	// Prompt returns the composed prompt without contacting any backend.
	Prompt(req scenario.GenerationRequest) scenario.Prompt
}

type GenerateOptions struct {
	TraceID string // propagated from the caller, optional
}

type GenerationResult struct {
	ID        int64
	Text      string
	Provider  llm.Kind
	Model     string
	IssueType scenario.IssueType
}

// GenerationDefaults are the process-wide backend defaults, read-only after startup.
type GenerationDefaults struct {
	OpenAI  config.OpenAIConfig
	Ollama  config.OllamaConfig
	Timeout time.Duration
}

type generationService struct {
	generator llm.Generator
	defaults  GenerationDefaults
}

func NewGenerationService(generator llm.Generator, defaults GenerationDefaults) GenerationService {
	return &generationService{
		generator: generator,
		defaults:  defaults,
	}
}

func (s *generationService) Prompt(req scenario.GenerationRequest) scenario.Prompt {
	rc := scenario.Resolve(req)
	return scenario.Compose(rc, rc.IssueType)
}

func (s *generationService) Generate(ctx context.Context, req scenario.GenerationRequest, opts GenerateOptions) (*GenerationResult, error) {
	rc := scenario.Resolve(req)
	prompt := scenario.Compose(rc, rc.IssueType)
	cfg := s.providerConfig(req)

	result := &GenerationResult{
		ID:        id.New(),
		Provider:  cfg.Kind,
		Model:     cfg.Model,
		IssueType: rc.IssueType,
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		GenerationID: logger.Ptr(result.ID),
		Provider:     logger.Ptr(string(cfg.Kind)),
		Model:        logger.Ptr(cfg.Model),
		IssueType:    logger.Ptr(string(rc.IssueType)),
		Component:    "scenariogen.service.generation",
	})

	sc := logger.StartSpanFromTraceID(ctx, opts.TraceID, "scenario.generate")
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(
		attribute.Int64("generation.id", result.ID),
		attribute.String("generation.provider", string(cfg.Kind)),
		attribute.String("generation.model", cfg.Model),
		attribute.String("generation.issue_type", string(rc.IssueType)),
	)

	if s.defaults.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.defaults.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := s.generator.Generate(ctx, prompt.LLM(), cfg)
	metrics.GenerationDuration.WithLabelValues(string(cfg.Kind)).Observe(time.Since(start).Seconds())

	if err == nil {
		result.Text, err = scenario.Normalize(raw)
	} else {
		err = classify(err)
	}

	if err != nil {
		kind := scenario.FailureKindOf(err)
		metrics.GenerationsTotal.WithLabelValues(string(cfg.Kind), string(rc.IssueType), string(kind)).Inc()
		sc.Fail(err, string(kind))
		slog.WarnContext(ctx, "generation failed",
			"failure_kind", kind,
			"error", logger.Truncate(err.Error(), 500),
			"duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	metrics.GenerationsTotal.WithLabelValues(string(cfg.Kind), string(rc.IssueType), "success").Inc()
	slog.InfoContext(ctx, "generation completed",
		"chars", len(result.Text),
		"duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

// providerConfig builds the per-request backend configuration from the
// request and the process defaults.
func (s *generationService) providerConfig(req scenario.GenerationRequest) llm.Config {
	kind := llm.ParseKind(req.Provider)

	switch kind {
	case llm.KindOllama:
		baseURL := llm.NormalizeBaseURL(req.OllamaURL)
		if baseURL == "" {
			baseURL = llm.NormalizeBaseURL(s.defaults.Ollama.BaseURL)
		}
		return llm.Config{
			Kind:    kind,
			Model:   firstNonEmpty(req.Model, s.defaults.Ollama.Model, llm.DefaultOllamaModel),
			BaseURL: firstNonEmpty(baseURL, llm.DefaultOllamaURL),
		}
	default:
		return llm.Config{
			Kind:    kind,
			Model:   firstNonEmpty(req.Model, s.defaults.OpenAI.Model, llm.DefaultOpenAIModel),
			BaseURL: s.defaults.OpenAI.BaseURL,
			APIKey:  s.defaults.OpenAI.APIKey,
		}
	}
}

func classify(err error) error {
	var failure *scenario.Failure
	if errors.As(err, &failure) {
		return failure
	}

	if errors.Is(err, llm.ErrBackendUnconfigured) {
		return &scenario.Failure{Kind: scenario.FailureBackendUnconfigured, Detail: ErrOpenAIUnconfigured, Err: err}
	}

	var upstream *llm.UpstreamError
	if errors.As(err, &upstream) {
		return &scenario.Failure{Kind: scenario.FailureUpstream, Detail: upstream.Error(), Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &scenario.Failure{Kind: scenario.FailureUpstream, Detail: fmt.Sprintf("generation aborted: %v", err), Err: err}
	}

	return &scenario.Failure{Kind: scenario.FailureInternal, Detail: err.Error(), Err: err}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
