package config

import (
	"github.com/aschepis/backscratcher/relay/llm/ollama"
	"github.com/rs/zerolog"
)

// LoadOllamaConfig returns the Ollama adapter settings, with the model optionally overridden.
func LoadOllamaConfig(cfg *Config, model string) ollama.Config {
	oc := ollama.Config{}
	if cfg != nil {
		oc.Host = cfg.Ollama.Host
		oc.Model = cfg.Ollama.Model
	}
	if oc.Host == "" {
		oc.Host = ollama.DefaultHost
	}
	if model != "" {
		oc.Model = model
	}
	return oc
}

// NewOllamaProvider creates a new Ollama provider from the configuration.
func NewOllamaProvider(cfg *Config, logger zerolog.Logger) (*ollama.OllamaProvider, error) {
	return ollama.New(LoadOllamaConfig(cfg, ""), logger)
}
