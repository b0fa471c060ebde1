package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultOpenAIModel       = "gpt-4o-mini"
	DefaultOllamaURL         = "http://localhost:11434"
	DefaultOllamaModel       = "codellama"
	DefaultGenerationTimeout = 120 * time.Second
	DefaultMaxBodyBytes      = 1 << 20
)

type Config struct {
	OTel       OTelConfig
	OpenAI     OpenAIConfig
	Ollama     OllamaConfig
	Generation GenerationConfig
	HTTP       HTTPConfig
	Env        string
	Port       string
	NodeID     int64
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	SampleRatio    float64 // root-span sampling; outside (0,1) samples everything
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type GenerationConfig struct {
	Timeout time.Duration // 0 disables the per-request deadline
}

type HTTPConfig struct {
	MaxBodyBytes    int64
	AllowedOrigins  []string // empty reflects any origin
	TraceHeaderName string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the HTTP service
//   - .env.cli for the command line tool
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("SCENARIOGEN_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:    getEnv("SCENARIOGEN_ENV", "development"),
		Port:   getEnv("PORT", "8787"),
		NodeID: getEnvInt64("NODE_ID", 1),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "scenariogen"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", DefaultOpenAIModel),
		},
		Ollama: OllamaConfig{
			BaseURL: getEnv("OLLAMA_URL", DefaultOllamaURL),
			Model:   getEnv("OLLAMA_MODEL", DefaultOllamaModel),
		},
		Generation: GenerationConfig{
			Timeout: getEnvDuration("GENERATION_TIMEOUT", DefaultGenerationTimeout),
		},
		HTTP: HTTPConfig{
			MaxBodyBytes:    getEnvInt64("MAX_BODY_BYTES", DefaultMaxBodyBytes),
			AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS"),
			TraceHeaderName: getEnv("TRACE_HEADER_NAME", "X-Trace-Id"),
		},
	}

	if cfg.HTTP.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", cfg.HTTP.MaxBodyBytes)
	}
	if cfg.Generation.Timeout < 0 {
		return Config{}, fmt.Errorf("GENERATION_TIMEOUT must not be negative, got %s", cfg.Generation.Timeout)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
