package config

import (
	"fmt"
	"time"

	"github.com/aschepis/backscratcher/relay/llm"
	"github.com/aschepis/backscratcher/relay/llm/anthropic"
	"github.com/aschepis/backscratcher/relay/llm/google"
	"github.com/aschepis/backscratcher/relay/llm/ollama"
	"github.com/aschepis/backscratcher/relay/llm/openai"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Settings flattens the provider sections into registry settings.
func Settings(cfg *Config) llm.ProviderSettings {
	return llm.ProviderSettings{
		GoogleAPIKey:    cfg.Google.APIKey,
		GoogleHost:      cfg.Google.Host,
		GoogleModel:     cfg.Google.Model,
		OpenAIAPIKey:    cfg.OpenAI.APIKey,
		OpenAIBaseURL:   cfg.OpenAI.BaseURL,
		OpenAIModel:     cfg.OpenAI.Model,
		OpenAIOrg:       cfg.OpenAI.Organization,
		AnthropicAPIKey: cfg.Anthropic.APIKey,
		AnthropicModel:  cfg.Anthropic.Model,
		OllamaHost:      cfg.Ollama.Host,
		OllamaModel:     cfg.Ollama.Model,
	}
}

// Registry creates a provider registry enabling the providers listed in llm_providers.
func Registry(cfg *Config) *llm.ProviderRegistry {
	return llm.NewProviderRegistry(Settings(cfg), cfg.LLMProviders)
}

// NewProvider creates the adapter for the first provider in llm_providers that is
// configured, trying them in the listed order.
func NewProvider(cfg *Config, logger zerolog.Logger) (llm.Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	preferences := lo.Map(cfg.LLMProviders, func(p string, _ int) llm.Preference {
		return llm.Preference{Provider: p}
	})
	key, err := Registry(cfg).Resolve(preferences)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("provider", key.Provider).Str("model", key.Model).Msg("Resolved LLM provider")
	return NewProviderForKey(cfg, key, logger)
}

// NewProviderForKey creates the adapter described by a resolved ClientKey.
// Settings the key does not carry are taken from cfg.
func NewProviderForKey(cfg *Config, key *llm.ClientKey, logger zerolog.Logger) (llm.Provider, error) {
	var (
		provider llm.Provider
		err      error
	)

	switch key.Provider {
	case llm.ProviderGoogle:
		gc := google.Config{Host: key.Host, Model: key.Model, APIKey: key.APIKey}
		if cfg != nil {
			gc.Timeout = time.Duration(cfg.Google.Timeout) * time.Second
		}
		provider, err = asProvider(google.New(gc, logger))
	case llm.ProviderOpenAI:
		provider, err = asProvider(openai.New(openai.Config{
			APIKey:       key.APIKey,
			BaseURL:      key.BaseURL,
			Model:        key.Model,
			Organization: key.Organization,
		}, logger))
	case llm.ProviderAnthropic:
		ac := anthropic.Config{APIKey: key.APIKey, Model: key.Model}
		if cfg != nil {
			ac.MaxTokens = cfg.Anthropic.MaxTokens
		}
		provider, err = asProvider(anthropic.New(ac, logger))
	case llm.ProviderOllama:
		provider, err = asProvider(ollama.New(ollama.Config{Host: key.Host, Model: key.Model}, logger))
	default:
		return nil, fmt.Errorf("unknown provider: %s", key.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", key.Provider, err)
	}
	return provider, nil
}

// asProvider keeps a failed constructor from yielding a non-nil interface holding a nil pointer.
func asProvider[P llm.Provider](p P, err error) (llm.Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
