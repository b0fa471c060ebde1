package service

import (
	"net/http"

	"scenariogen.app/server/common/llm"
	"scenariogen.app/server/core/config"
)

type Services struct {
	generator llm.Generator
	defaults  GenerationDefaults
}

type ServicesConfig struct {
	Config config.Config
	// HTTPClient is shared by the backend generators; nil uses a default client.
	HTTPClient *http.Client
	// Generator overrides the backend dispatcher, mainly for tests.
	Generator llm.Generator
}

func NewServices(cfg ServicesConfig) *Services {
	generator := cfg.Generator
	if generator == nil {
		generator = llm.NewDispatcher(cfg.HTTPClient)
	}

	return &Services{
		generator: generator,
		defaults: GenerationDefaults{
			OpenAI:  cfg.Config.OpenAI,
			Ollama:  cfg.Config.Ollama,
			Timeout: cfg.Config.Generation.Timeout,
		},
	}
}

func (s *Services) Generation() GenerationService {
	return NewGenerationService(s.generator, s.defaults)
}
