package config

import (
	"github.com/aschepis/backscratcher/relay/llm/openai"
	"github.com/rs/zerolog"
)

// LoadOpenAIConfig returns the OpenAI adapter settings, with the model optionally overridden.
func LoadOpenAIConfig(cfg *Config, model string) openai.Config {
	oc := openai.Config{}
	if cfg != nil {
		oc.APIKey = cfg.OpenAI.APIKey
		oc.BaseURL = cfg.OpenAI.BaseURL
		oc.Model = cfg.OpenAI.Model
		oc.Organization = cfg.OpenAI.Organization
	}
	if model != "" {
		oc.Model = model
	}
	return oc
}

// NewOpenAIProvider creates a new OpenAI provider from the configuration.
func NewOpenAIProvider(cfg *Config, logger zerolog.Logger) (*openai.OpenAIProvider, error) {
	return openai.New(LoadOpenAIConfig(cfg, ""), logger)
}
