package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GoogleConfig represents configuration for the Google Gemini provider.
type GoogleConfig struct {
	Host    string `yaml:"host,omitempty"`    // API host (default: https://generativelanguage.googleapis.com)
	Model   string `yaml:"model,omitempty"`   // Default model name
	APIKey  string `yaml:"api_key,omitempty"` // Google API key
	Timeout int    `yaml:"timeout,omitempty"` // Request timeout in seconds
}

// OpenAIConfig represents configuration for OpenAI LLM provider.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`      // OpenAI API key
	BaseURL      string `yaml:"base_url,omitempty"`     // Custom base URL (default: official API)
	Model        string `yaml:"model,omitempty"`        // Default model name
	Organization string `yaml:"organization,omitempty"` // Organization ID
}

// AnthropicConfig represents configuration for Anthropic LLM provider.
type AnthropicConfig struct {
	APIKey    string `yaml:"api_key,omitempty"`    // Anthropic API key
	Model     string `yaml:"model,omitempty"`      // Default model name
	MaxTokens int64  `yaml:"max_tokens,omitempty"` // Completion token limit
}

// OllamaConfig represents configuration for Ollama LLM provider.
type OllamaConfig struct {
	Host  string `yaml:"host,omitempty"`  // Ollama host (default: "http://localhost:11434")
	Model string `yaml:"model,omitempty"` // Default model name
}

// LogConfig represents logger settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error, trace
	File   string `yaml:"file,omitempty"`   // Log file path, empty for stdout
	Pretty bool   `yaml:"pretty,omitempty"` // Console output, only valid without a file
}

// Config represents the relay configuration.
type Config struct {
	// Ordered provider preference list
	LLMProviders []string `yaml:"llm_providers,omitempty"`

	// LLM provider configurations
	Google    GoogleConfig    `yaml:"google,omitempty"`
	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Anthropic AnthropicConfig `yaml:"anthropic,omitempty"`
	Ollama    OllamaConfig    `yaml:"ollama,omitempty"`

	Log LogConfig `yaml:"log,omitempty"`
}

// Defaults returns the configuration used when no file or environment overrides are present.
func Defaults() Config {
	return Config{
		LLMProviders: []string{"google"},
		Google: GoogleConfig{
			Host:    "https://generativelanguage.googleapis.com",
			Model:   "gemini-2.0-flash-exp",
			Timeout: 600,
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model:     "claude-haiku-4-5",
			MaxTokens: 4096,
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.2:3b",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GetConfigPath returns the default config file path.
// Can be overridden via RELAY_CONFIG_PATH environment variable.
func GetConfigPath() string {
	if envPath := os.Getenv("RELAY_CONFIG_PATH"); envPath != "" {
		return expandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.relay/config.yaml"
	}
	return filepath.Join(homeDir, ".relay", "config.yaml")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// Load builds the configuration from defaults, the YAML file at path (if it exists),
// a .env file in the working directory (if it exists) and environment variables,
// each layer overriding the previous one.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	expandedPath := expandPath(path)
	if expandedPath != "" {
		data, err := os.ReadFile(expandedPath) //#nosec 304 -- intentional file read for config
		switch {
		case err == nil:
			var fileConfig Config
			if err := yaml.Unmarshal(data, &fileConfig); err != nil {
				return nil, fmt.Errorf("failed to parse config file %q: %w", expandedPath, err)
			}
			if err := mergo.Merge(&cfg, fileConfig, mergo.WithOverride); err != nil {
				return nil, fmt.Errorf("failed to merge config file: %w", err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file %q: %w", expandedPath, err)
		}
	}

	// Variables already set in the process environment win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Google.APIKey, "GOOGLE_API_KEY")
	setFromEnv(&cfg.Google.Host, "GOOGLE_HOST")
	setFromEnv(&cfg.Google.Model, "GOOGLE_MODEL")

	setFromEnv(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setFromEnv(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setFromEnv(&cfg.OpenAI.Model, "OPENAI_MODEL")
	setFromEnv(&cfg.OpenAI.Organization, "OPENAI_ORG_ID")

	setFromEnv(&cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setFromEnv(&cfg.Anthropic.Model, "ANTHROPIC_MODEL")

	setFromEnv(&cfg.Ollama.Host, "OLLAMA_HOST")
	setFromEnv(&cfg.Ollama.Model, "OLLAMA_MODEL")

	setFromEnv(&cfg.Log.Level, "LOG_LEVEL")
}

func setFromEnv(field *string, name string) {
	if value := os.Getenv(name); value != "" {
		*field = value
	}
}

// Save saves the configuration to the specified path.
func Save(cfg *Config, path string) error {
	expandedPath := expandPath(path)

	// Ensure directory exists
	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(expandedPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
