package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRegistry_IsProviderEnabled(t *testing.T) {
	t.Parallel()
	registry := NewProviderRegistry(ProviderSettings{}, []string{ProviderGoogle, ProviderOllama})

	assert.True(t, registry.IsProviderEnabled(ProviderGoogle))
	assert.True(t, registry.IsProviderEnabled(ProviderOllama))
	assert.False(t, registry.IsProviderEnabled(ProviderOpenAI))
}

func TestProviderRegistry_IsProviderConfigured(t *testing.T) {
	t.Parallel()
	empty := NewProviderRegistry(ProviderSettings{}, nil)
	assert.False(t, empty.IsProviderConfigured(ProviderGoogle))
	assert.False(t, empty.IsProviderConfigured(ProviderOpenAI))
	assert.False(t, empty.IsProviderConfigured(ProviderAnthropic))
	assert.True(t, empty.IsProviderConfigured(ProviderOllama))
	assert.False(t, empty.IsProviderConfigured("bogus"))

	keyed := NewProviderRegistry(ProviderSettings{
		GoogleAPIKey:    "g",
		OpenAIAPIKey:    "o",
		AnthropicAPIKey: "a",
	}, nil)
	assert.True(t, keyed.IsProviderConfigured(ProviderGoogle))
	assert.True(t, keyed.IsProviderConfigured(ProviderOpenAI))
	assert.True(t, keyed.IsProviderConfigured(ProviderAnthropic))
}

func TestProviderRegistry_Resolve_WithPreferences(t *testing.T) {
	t.Parallel()
	registry := NewProviderRegistry(ProviderSettings{
		GoogleAPIKey: "g",
		GoogleHost:   "https://example.test",
		GoogleModel:  "gemini-default",
		OllamaModel:  "llama3",
	}, []string{ProviderGoogle, ProviderOllama})

	key, err := registry.Resolve([]Preference{
		{Provider: ProviderGoogle, Model: "gemini-pro"},
		{Provider: ProviderOllama},
	})
	require.NoError(t, err)

	assert.Equal(t, &ClientKey{
		Provider: ProviderGoogle,
		Model:    "gemini-pro",
		APIKey:   "g",
		Host:     "https://example.test",
	}, key)
}

func TestProviderRegistry_Resolve_WithoutPreferences(t *testing.T) {
	t.Parallel()
	registry := NewProviderRegistry(ProviderSettings{
		GoogleAPIKey: "g",
		GoogleModel:  "gemini-default",
		OllamaModel:  "llama3",
	}, []string{ProviderOllama, ProviderGoogle})

	key, err := registry.Resolve(nil)
	require.NoError(t, err)

	assert.Equal(t, ProviderGoogle, key.Provider)
	assert.Equal(t, "gemini-default", key.Model)
}

func TestProviderRegistry_Resolve_Fallback(t *testing.T) {
	t.Parallel()
	registry := NewProviderRegistry(ProviderSettings{
		OpenAIModel: "gpt-4o",
		OllamaModel: "llama3",
	}, []string{ProviderOpenAI, ProviderOllama})

	// OpenAI is enabled but has no key.
	key, err := registry.Resolve([]Preference{{Provider: ProviderOpenAI}, {Provider: ProviderOllama}})
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, key.Provider)
	assert.Equal(t, "http://localhost:11434", key.Host)
	assert.Equal(t, "llama3", key.Model)
}

func TestProviderRegistry_Resolve_NoAvailableProvider(t *testing.T) {
	t.Parallel()
	_, err := NewProviderRegistry(ProviderSettings{}, nil).Resolve(nil)
	require.EqualError(t, err, "no providers enabled")

	registry := NewProviderRegistry(ProviderSettings{}, []string{ProviderOllama})
	_, err = registry.Resolve([]Preference{{Provider: ProviderOllama}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no available provider from preferences [ollama]")
}
