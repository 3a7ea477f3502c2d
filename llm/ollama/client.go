package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aschepis/backscratcher/relay/llm"
	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"
)

const DefaultHost = "http://localhost:11434"

// Config holds the settings of one OllamaProvider.
type Config struct {
	Host    string                 `json:"host"`
	Model   string                 `json:"model"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// OllamaProvider implements llm.Provider for a local or remote Ollama server.
type OllamaProvider struct {
	client *api.Client
	config Config
	usage  *llm.UsageCollector
	logger zerolog.Logger
}

// New creates an OllamaProvider. An empty host falls back to DefaultHost.
func New(cfg Config, logger zerolog.Logger) (*OllamaProvider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	baseURL, err := parseHost(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid host: %w", err)
	}

	return &OllamaProvider{
		client: api.NewClient(baseURL, &http.Client{}),
		config: cfg,
		usage:  llm.NewUsageCollector(),
		logger: logger.With().Str("provider", llm.ProviderOllama).Str("model", cfg.Model).Logger(),
	}, nil
}

// parseHost parses a host string into a URL, defaulting the scheme to http.
func parseHost(host string) (*url.URL, error) {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return url.Parse(host)
}

// Complete implements llm.Provider.Complete.
func (p *OllamaProvider) Complete(ctx context.Context, system string, messages []llm.Message, tools []llm.Tool) (llm.Message, llm.Usage, error) {
	chatReq := &api.ChatRequest{
		Model:    p.config.Model,
		Messages: ToOllamaMessages(system, messages),
		Stream:   new(bool),
		Options:  p.config.Options,
	}
	if len(tools) > 0 {
		chatReq.Tools = ToOllamaTools(tools)
	}

	var chatResp api.ChatResponse
	err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		chatResp = resp
		return nil
	})
	if err != nil {
		return llm.Message{}, llm.Usage{}, convertOllamaError(err)
	}

	reply := FromOllamaMessage(chatResp.Message, tools)
	usage := FromOllamaMetrics(chatResp.PromptEvalCount, chatResp.EvalCount)
	p.usage.Add(usage)

	llm.EmitDebugTrace(p.logger, p.config, chatReq, chatResp, usage)

	return reply, usage, nil
}

// TotalUsage implements llm.Provider.TotalUsage.
func (p *OllamaProvider) TotalUsage() llm.Usage {
	return p.usage.Usage()
}

// convertOllamaError converts client errors to llm.ProviderError. Ollama truncates
// over-long prompts itself, so no context length predicate applies.
func convertOllamaError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return llm.HandleResponse(statusErr.StatusCode, []byte(statusErr.ErrorMessage), nil)
	}
	return llm.WrapProviderError("ollama chat request failed", err)
}

var _ llm.Provider = (*OllamaProvider)(nil)
