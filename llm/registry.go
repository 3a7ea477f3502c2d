package llm

import (
	"fmt"
	"sort"
	"sync"
)

const (
	ProviderGoogle    = "google"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Preference represents a single provider/model preference, in priority order.
type Preference struct {
	Provider string
	Model    string
}

// ClientKey uniquely identifies a provider configuration.
type ClientKey struct {
	Provider     string
	Model        string
	APIKey       string // For credential-based providers
	Host         string // For Google and Ollama
	BaseURL      string // For OpenAI
	Organization string // For OpenAI
}

// ProviderSettings holds the resolved settings the registry chooses from.
// It avoids an import of the config package.
type ProviderSettings struct {
	GoogleAPIKey    string
	GoogleHost      string
	GoogleModel     string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	OpenAIOrg       string
	AnthropicAPIKey string
	AnthropicModel  string
	OllamaHost      string
	OllamaModel     string
}

// ProviderRegistry manages provider selection and configuration resolution.
// Adapter construction is left to the caller to avoid import cycles.
type ProviderRegistry struct {
	mu               sync.RWMutex
	enabledProviders map[string]bool
	settings         ProviderSettings
}

// NewProviderRegistry creates a registry with the given settings and enabled providers.
func NewProviderRegistry(settings ProviderSettings, enabledProviders []string) *ProviderRegistry {
	enabled := make(map[string]bool, len(enabledProviders))
	for _, p := range enabledProviders {
		enabled[p] = true
	}
	return &ProviderRegistry{
		enabledProviders: enabled,
		settings:         settings,
	}
}

// IsProviderEnabled checks if a provider is in the enabled providers list.
func (r *ProviderRegistry) IsProviderEnabled(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabledProviders[provider]
}

// IsProviderConfigured checks if a provider has the credentials or host it needs.
func (r *ProviderRegistry) IsProviderConfigured(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isProviderConfiguredUnlocked(provider)
}

// Resolve returns the ClientKey for the first enabled and configured provider among
// the preferences. With no preferences, enabled providers are tried in name order.
func (r *ProviderRegistry) Resolve(preferences []Preference) (*ClientKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(preferences) == 0 {
		for _, p := range r.enabledList() {
			preferences = append(preferences, Preference{Provider: p})
		}
	}
	if len(preferences) == 0 {
		return nil, fmt.Errorf("no providers enabled")
	}

	var attempted []string
	for _, pref := range preferences {
		attempted = append(attempted, pref.Provider)
		if !r.enabledProviders[pref.Provider] || !r.isProviderConfiguredUnlocked(pref.Provider) {
			continue
		}
		key, err := r.resolveProviderConfig(pref.Provider, pref.Model)
		if err != nil {
			continue
		}
		return key, nil
	}

	return nil, fmt.Errorf("no available provider from preferences %v (enabled: %v)", attempted, r.enabledList())
}

// Must be called with r.mu held.
func (r *ProviderRegistry) isProviderConfiguredUnlocked(provider string) bool {
	switch provider {
	case ProviderGoogle:
		return r.settings.GoogleAPIKey != ""
	case ProviderOpenAI:
		return r.settings.OpenAIAPIKey != ""
	case ProviderAnthropic:
		return r.settings.AnthropicAPIKey != ""
	case ProviderOllama:
		// Ollama needs no key and its host has a default.
		return true
	default:
		return false
	}
}

func (r *ProviderRegistry) resolveProviderConfig(provider, modelOverride string) (*ClientKey, error) {
	key := &ClientKey{Provider: provider, Model: modelOverride}

	switch provider {
	case ProviderGoogle:
		key.APIKey = r.settings.GoogleAPIKey
		key.Host = r.settings.GoogleHost
		if key.Model == "" {
			key.Model = r.settings.GoogleModel
		}
	case ProviderOpenAI:
		key.APIKey = r.settings.OpenAIAPIKey
		key.BaseURL = r.settings.OpenAIBaseURL
		key.Organization = r.settings.OpenAIOrg
		if key.Model == "" {
			key.Model = r.settings.OpenAIModel
		}
	case ProviderAnthropic:
		key.APIKey = r.settings.AnthropicAPIKey
		if key.Model == "" {
			key.Model = r.settings.AnthropicModel
		}
	case ProviderOllama:
		key.Host = r.settings.OllamaHost
		if key.Host == "" {
			key.Host = "http://localhost:11434"
		}
		if key.Model == "" {
			key.Model = r.settings.OllamaModel
		}
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	if key.Model == "" {
		return nil, fmt.Errorf("%s model not specified and no default configured", provider)
	}
	return key, nil
}

func (r *ProviderRegistry) enabledList() []string {
	providers := make([]string, 0, len(r.enabledProviders))
	for p, enabled := range r.enabledProviders {
		if enabled {
			providers = append(providers, p)
		}
	}
	sort.Strings(providers)
	return providers
}
