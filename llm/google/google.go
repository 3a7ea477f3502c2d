package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aschepis/backscratcher/relay/llm"
	"github.com/rs/zerolog"
)

const (
	DefaultHost    = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash-exp"
	DefaultTimeout = 600 * time.Second
)

// Config holds the settings of one GoogleProvider.
type Config struct {
	Host    string        `json:"host"`
	Model   string        `json:"model"`
	APIKey  string        `json:"-"`
	Timeout time.Duration `json:"timeout"`
}

// GoogleProvider implements llm.Provider for the Gemini generateContent API.
type GoogleProvider struct {
	client *http.Client
	config Config
	usage  *llm.UsageCollector
	logger zerolog.Logger
}

// New creates a GoogleProvider. Empty host, model and timeout fall back to defaults.
func New(cfg Config, logger zerolog.Logger) (*GoogleProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &GoogleProvider{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
		usage:  llm.NewUsageCollector(),
		logger: logger.With().Str("provider", llm.ProviderGoogle).Str("model", cfg.Model).Logger(),
	}, nil
}

// Complete implements llm.Provider.Complete.
func (p *GoogleProvider) Complete(ctx context.Context, system string, messages []llm.Message, tools []llm.Tool) (llm.Message, llm.Usage, error) {
	payload := buildRequest(system, messages, tools)

	body, err := p.post(ctx, payload)
	if err != nil {
		return llm.Message{}, llm.Usage{}, err
	}

	resp, err := decodeResponse(body)
	if err != nil {
		return llm.Message{}, llm.Usage{}, llm.WrapProviderError("invalid response from Google", err)
	}

	message := responseToMessage(resp)
	usage := usageFromResponse(resp)
	p.usage.Add(usage)

	llm.EmitDebugTrace(p.logger, p.config, payload, body, usage)

	return message, usage, nil
}

// TotalUsage implements llm.Provider.TotalUsage.
func (p *GoogleProvider) TotalUsage() llm.Usage {
	return p.usage.Usage()
}

// endpoint builds the generateContent URL. The API key travels as a query parameter.
func (p *GoogleProvider) endpoint() string {
	query := url.Values{"key": {p.config.APIKey}}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?%s",
		strings.TrimRight(p.config.Host, "/"), p.config.Model, query.Encode())
}

// post sends the payload and returns the body of a successful response.
// Transport failures are returned unclassified.
func (p *GoogleProvider) post(ctx context.Context, payload generateContentRequest) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google request failed: %w", err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			p.logger.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := classifyResponse(res.StatusCode, body); err != nil {
		p.logger.Debug().Int("status", res.StatusCode).Err(err).Msg("Google request rejected")
		return nil, err
	}
	return body, nil
}

// classifyResponse maps a status to an error. Rate limiting and 5xx are reported as
// request failures; retrying them is left to the caller.
func classifyResponse(statusCode int, body []byte) error {
	switch {
	case statusCode == http.StatusOK:
		return nil
	case statusCode == http.StatusTooManyRequests || statusCode >= 500:
		return llm.NewProviderError(llm.ErrorKindRequestFailed, statusCode,
			fmt.Sprintf("Server error: %d %s", statusCode, http.StatusText(statusCode)), string(body))
	default:
		return llm.HandleResponse(statusCode, body, isContextLengthError)
	}
}

var _ llm.Provider = (*GoogleProvider)(nil)
