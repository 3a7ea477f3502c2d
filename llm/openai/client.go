package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aschepis/backscratcher/relay/llm"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Config holds the settings of one OpenAIProvider.
type Config struct {
	APIKey       string       `json:"-"`
	BaseURL      string       `json:"base_url,omitempty"`
	Model        string       `json:"model"`
	Organization string       `json:"organization,omitempty"`
	HTTPClient   *http.Client `json:"-"`
}

// OpenAIProvider implements llm.Provider for OpenAI-compatible chat completion APIs.
type OpenAIProvider struct {
	client *openai.Client
	config Config
	usage  *llm.UsageCollector
	logger zerolog.Logger
}

// New creates an OpenAIProvider.
// If BaseURL is empty, it will use the default OpenAI API endpoint.
func New(cfg Config, logger zerolog.Logger) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.Organization != "" {
		config.OrgID = cfg.Organization
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		config: cfg,
		usage:  llm.NewUsageCollector(),
		logger: logger.With().Str("provider", llm.ProviderOpenAI).Str("model", cfg.Model).Logger(),
	}, nil
}

// Complete implements llm.Provider.Complete.
func (p *OpenAIProvider) Complete(ctx context.Context, system string, messages []llm.Message, tools []llm.Tool) (llm.Message, llm.Usage, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:    p.config.Model,
		Messages: ToOpenAIMessages(system, messages),
	}
	if len(tools) > 0 {
		chatReq.Tools = ToOpenAITools(tools)
		chatReq.ToolChoice = "auto"
	}

	chatResp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return llm.Message{}, llm.Usage{}, convertOpenAIError(err)
	}

	message := FromOpenAIResponse(chatResp)
	usage := FromOpenAIUsage(chatResp.Usage)
	p.usage.Add(usage)

	llm.EmitDebugTrace(p.logger, p.config, chatReq, chatResp, usage)

	return message, usage, nil
}

// TotalUsage implements llm.Provider.TotalUsage.
func (p *OpenAIProvider) TotalUsage() llm.Usage {
	return p.usage.Usage()
}

// apiErrorEnvelope rebuilds the error body the SDK decoded so the shared
// response predicates can inspect it.
type apiErrorEnvelope struct {
	Error *openai.APIError `json:"error"`
}

// convertOpenAIError converts OpenAI SDK errors to llm.ProviderError.
func convertOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		body, marshalErr := json.Marshal(apiErrorEnvelope{Error: apiErr})
		if marshalErr != nil {
			body = []byte(apiErr.Message)
		}
		return llm.HandleResponse(apiErr.HTTPStatusCode, body, llm.IsOpenAIContextLengthError)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return llm.HandleResponse(reqErr.HTTPStatusCode, []byte(reqErr.Error()), nil)
	}

	return llm.WrapProviderError("OpenAI request failed", err)
}

var _ llm.Provider = (*OpenAIProvider)(nil)
