package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aschepis/backscratcher/relay/llm"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	DefaultModel     = "claude-haiku-4-5"
	DefaultMaxTokens = 4096
)

// Config holds the settings of one AnthropicProvider.
type Config struct {
	APIKey     string       `json:"-"`
	Model      string       `json:"model"`
	MaxTokens  int64        `json:"max_tokens"`
	BaseURL    string       `json:"base_url,omitempty"`
	HTTPClient *http.Client `json:"-"`
}

// AnthropicProvider implements llm.Provider for Anthropic's Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	config Config
	usage  *llm.UsageCollector
	logger zerolog.Logger
}

// New creates an AnthropicProvider. The SDK's own retries are disabled; callers decide
// whether to resubmit.
func New(cfg Config, logger zerolog.Logger) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicProvider{
		client: &client,
		config: cfg,
		usage:  llm.NewUsageCollector(),
		logger: logger.With().Str("provider", llm.ProviderAnthropic).Str("model", cfg.Model).Logger(),
	}, nil
}

// Complete implements llm.Provider.Complete.
func (p *AnthropicProvider) Complete(ctx context.Context, system string, messages []llm.Message, tools []llm.Tool) (llm.Message, llm.Usage, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: p.config.MaxTokens,
		Messages:  ToMessageParams(messages),
		System:    buildSystemBlocks(system),
		Tools:     ToToolUnionParams(tools),
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return llm.Message{}, llm.Usage{}, convertAnthropicError(err)
	}

	reply := FromMessage(message)
	usage := FromUsage(message.Usage)
	p.usage.Add(usage)

	if message.Usage.CacheCreationInputTokens > 0 || message.Usage.CacheReadInputTokens > 0 {
		p.logger.Debug().
			Int64("cache_creation_tokens", message.Usage.CacheCreationInputTokens).
			Int64("cache_read_tokens", message.Usage.CacheReadInputTokens).
			Msg("Prompt cache stats")
	}
	llm.EmitDebugTrace(p.logger, p.config, params, message, usage)

	return reply, usage, nil
}

// TotalUsage implements llm.Provider.TotalUsage.
func (p *AnthropicProvider) TotalUsage() llm.Usage {
	return p.usage.Usage()
}

// buildSystemBlocks places the system prompt in a single cached block. Placing
// cache_control on the system block caches the tools and system prefix together.
func buildSystemBlocks(systemPrompt string) []anthropic.TextBlockParam {
	if systemPrompt == "" {
		return nil
	}
	return []anthropic.TextBlockParam{
		{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
	}
}

// isContextLengthError recognises Anthropic's over-long prompt rejection.
func isContextLengthError(body []byte) bool {
	message := strings.ToLower(gjson.GetBytes(body, "error.message").String())
	return strings.Contains(message, "prompt is too long") ||
		llm.IsBedrockContextLengthError(body)
}

// convertAnthropicError converts SDK errors to llm.ProviderError.
func convertAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return llm.HandleResponse(apiErr.StatusCode, []byte(apiErr.RawJSON()), isContextLengthError)
	}
	return llm.WrapProviderError("Anthropic request failed", err)
}

var _ llm.Provider = (*AnthropicProvider)(nil)
