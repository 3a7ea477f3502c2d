package config

import (
	"testing"
	"time"

	"github.com/aschepis/backscratcher/relay/llm"
	"github.com/aschepis/backscratcher/relay/llm/anthropic"
	"github.com/aschepis/backscratcher/relay/llm/google"
	"github.com/aschepis/backscratcher/relay/llm/ollama"
	"github.com/aschepis/backscratcher/relay/llm/openai"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderFollowsPreferenceOrder(t *testing.T) {
	tests := []struct {
		name      string
		configure func(cfg *Config)
		want      interface{}
	}{
		{
			name: "first configured provider wins",
			configure: func(cfg *Config) {
				cfg.LLMProviders = []string{"google", "openai"}
				cfg.Google.APIKey = "g-key"
				cfg.OpenAI.APIKey = "o-key"
			},
			want: &google.GoogleProvider{},
		},
		{
			name: "unconfigured provider is skipped",
			configure: func(cfg *Config) {
				cfg.LLMProviders = []string{"google", "anthropic"}
				cfg.Anthropic.APIKey = "a-key"
			},
			want: &anthropic.AnthropicProvider{},
		},
		{
			name: "openai",
			configure: func(cfg *Config) {
				cfg.LLMProviders = []string{"openai"}
				cfg.OpenAI.APIKey = "o-key"
			},
			want: &openai.OpenAIProvider{},
		},
		{
			name: "ollama needs no key",
			configure: func(cfg *Config) {
				cfg.LLMProviders = []string{"anthropic", "ollama"}
			},
			want: &ollama.OllamaProvider{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.configure(&cfg)

			provider, err := NewProvider(&cfg, zerolog.Nop())
			require.NoError(t, err)
			assert.IsType(t, tt.want, provider)
		})
	}
}

func TestNewProviderWithoutAvailableProvider(t *testing.T) {
	cfg := Defaults()
	cfg.LLMProviders = []string{"google", "openai"}

	provider, err := NewProvider(&cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, provider)
	assert.Contains(t, err.Error(), "no available provider")

	_, err = NewProvider(nil, zerolog.Nop())
	require.Error(t, err)
}

func TestNewProviderForKeyUnknownProvider(t *testing.T) {
	provider, err := NewProviderForKey(nil, &llm.ClientKey{Provider: "bedrock", Model: "m"}, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, provider)
}

func TestNewProviderForKeyConstructorFailure(t *testing.T) {
	provider, err := NewProviderForKey(nil, &llm.ClientKey{Provider: llm.ProviderOpenAI, Model: "gpt-4o"}, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, provider)
	assert.Contains(t, err.Error(), "failed to create openai provider")
}

func TestSettingsAndLoaders(t *testing.T) {
	cfg := Defaults()
	cfg.Google.APIKey = "g-key"
	cfg.Google.Timeout = 30
	cfg.OpenAI.Organization = "org"
	cfg.Anthropic.APIKey = "a-key"

	settings := Settings(&cfg)
	assert.Equal(t, "g-key", settings.GoogleAPIKey)
	assert.Equal(t, "org", settings.OpenAIOrg)
	assert.Equal(t, "llama3.2:3b", settings.OllamaModel)

	gc := LoadGoogleConfig(&cfg, "")
	assert.Equal(t, 30*time.Second, gc.Timeout)
	assert.Equal(t, "gemini-2.0-flash-exp", gc.Model)
	assert.Equal(t, "gemini-1.5-pro", LoadGoogleConfig(&cfg, "gemini-1.5-pro").Model)

	assert.Equal(t, "gpt-4o", LoadOpenAIConfig(&cfg, "gpt-4o").Model)
	assert.Equal(t, "org", LoadOpenAIConfig(&cfg, "").Organization)

	ac := LoadAnthropicConfig(&cfg, "")
	assert.Equal(t, int64(4096), ac.MaxTokens)
	assert.Equal(t, "a-key", ac.APIKey)

	assert.Equal(t, ollama.DefaultHost, LoadOllamaConfig(nil, "").Host)
	assert.Equal(t, "qwen3:8b", LoadOllamaConfig(&cfg, "qwen3:8b").Model)

	registry := Registry(&cfg)
	assert.True(t, registry.IsProviderEnabled(llm.ProviderGoogle))
	assert.False(t, registry.IsProviderEnabled(llm.ProviderOpenAI))
}

func TestProviderConstructors(t *testing.T) {
	cfg := Defaults()
	cfg.Google.APIKey = "g-key"
	cfg.OpenAI.APIKey = "o-key"
	cfg.Anthropic.APIKey = "a-key"

	_, err := NewGoogleProvider(&cfg, zerolog.Nop())
	require.NoError(t, err)
	_, err = NewOpenAIProvider(&cfg, zerolog.Nop())
	require.NoError(t, err)
	_, err = NewAnthropicProvider(&cfg, zerolog.Nop())
	require.NoError(t, err)
	_, err = NewOllamaProvider(&cfg, zerolog.Nop())
	require.NoError(t, err)

	_, err = NewGoogleProvider(&Config{}, zerolog.Nop())
	require.Error(t, err, "google requires an api key")
}
