package config

import (
	"github.com/aschepis/backscratcher/relay/llm/anthropic"
	"github.com/rs/zerolog"
)

// LoadAnthropicConfig returns the Anthropic adapter settings, with the model optionally overridden.
func LoadAnthropicConfig(cfg *Config, model string) anthropic.Config {
	ac := anthropic.Config{}
	if cfg != nil {
		ac.APIKey = cfg.Anthropic.APIKey
		ac.Model = cfg.Anthropic.Model
		ac.MaxTokens = cfg.Anthropic.MaxTokens
	}
	if model != "" {
		ac.Model = model
	}
	return ac
}

// NewAnthropicProvider creates a new Anthropic provider from the configuration.
func NewAnthropicProvider(cfg *Config, logger zerolog.Logger) (*anthropic.AnthropicProvider, error) {
	return anthropic.New(LoadAnthropicConfig(cfg, ""), logger)
}
