package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

type openaiGenerator struct {
	httpClient *http.Client
}

func newOpenAIGenerator(httpClient *http.Client) Generator {
	return &openaiGenerator{httpClient: httpClient}
}

// Generate sends the system and user instructions as two ordered messages to
// the Responses API and returns the aggregated output text.
func (g *openaiGenerator) Generate(ctx context.Context, prompt Prompt, cfg Config) (string, error) {
	if cfg.APIKey == "" {
		return "", ErrBackendUnconfigured
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(g.httpClient),
		// one outbound call per request; retrying is the caller's decision
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	client := openai.NewClient(opts...)
	resp, err := client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(prompt.System, responses.EasyInputMessageRoleSystem),
				responses.ResponseInputItemParamOfMessage(prompt.User, responses.EasyInputMessageRoleUser),
			},
		},
	})
	if err != nil {
		return "", openaiUpstreamError(err)
	}

	return resp.OutputText(), nil
}

func openaiUpstreamError(err error) *UpstreamError {
	upstream := &UpstreamError{Provider: KindOpenAI, Err: err}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		upstream.StatusCode = apiErr.StatusCode
		upstream.Message = apiErr.Message
	}
	if upstream.Message == "" {
		upstream.Message = err.Error()
	}
	return upstream
}
