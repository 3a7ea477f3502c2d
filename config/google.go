package config

import (
	"time"

	"github.com/aschepis/backscratcher/relay/llm/google"
	"github.com/rs/zerolog"
)

// LoadGoogleConfig returns the Google adapter settings, with the model optionally overridden.
func LoadGoogleConfig(cfg *Config, model string) google.Config {
	gc := google.Config{}
	if cfg != nil {
		gc.Host = cfg.Google.Host
		gc.Model = cfg.Google.Model
		gc.APIKey = cfg.Google.APIKey
		gc.Timeout = time.Duration(cfg.Google.Timeout) * time.Second
	}
	if model != "" {
		gc.Model = model
	}
	return gc
}

// NewGoogleProvider creates a new Google provider from the configuration.
func NewGoogleProvider(cfg *Config, logger zerolog.Logger) (*google.GoogleProvider, error) {
	return google.New(LoadGoogleConfig(cfg, ""), logger)
}
