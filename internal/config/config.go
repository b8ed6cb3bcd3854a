// Package config handles Argos configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/argos/config.yaml, /etc/argos/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "argos", "config.yaml"))
	}

	paths = append(paths, "/etc/argos/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all Argos configuration.
type Config struct {
	Model       ModelConfig     `yaml:"model"`
	Anthropic   AnthropicConfig `yaml:"anthropic"`
	Workspace   WorkspaceConfig `yaml:"workspace"`
	Search      SearchConfig    `yaml:"search"`
	Forge       ForgeConfig     `yaml:"forge"`
	Agent       AgentConfig     `yaml:"agent"`
	PersonaFile string          `yaml:"persona_file"`
	LogLevel    string          `yaml:"log_level"`
}

// ModelConfig selects the model backend.
type ModelConfig struct {
	// Name is the model identifier passed to the backend.
	Name string `yaml:"name"`
	// Provider is "ollama" or "anthropic".
	Provider string `yaml:"provider"`
	// OllamaURL is the Ollama base URL (provider "ollama" only).
	OllamaURL string `yaml:"ollama_url"`
}

// AnthropicConfig defines Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
}

// WorkspaceConfig defines the agent's workspace for file operations.
type WorkspaceConfig struct {
	// Path is the root directory for file operations.
	// All file tool paths are relative to this directory.
	// If empty, file tools are disabled.
	Path string `yaml:"path"`
}

// SearchConfig defines web search settings.
type SearchConfig struct {
	// BraveAPIKey enables the web_search tool when set.
	BraveAPIKey string `yaml:"brave_api_key"`
	// BraveURL overrides the Brave API endpoint (tests).
	BraveURL string `yaml:"brave_url"`
	// MaxResults caps results per query (default 3).
	MaxResults int `yaml:"max_results"`
}

// ForgeConfig defines source-forge (GitHub) settings.
type ForgeConfig struct {
	// Token is the API token. Empty leaves the repo tool registered
	// but answering every call with a credential error.
	Token string `yaml:"token"`
	// Owner is the default account for bare repository names.
	Owner string `yaml:"owner"`
	// URL overrides the API base URL (GitHub Enterprise, tests).
	URL string `yaml:"url"`
}

// AgentConfig tunes the orchestration loop.
type AgentConfig struct {
	// MaxToolRounds bounds model calls per turn (default 8).
	MaxToolRounds int `yaml:"max_tool_rounds"`
	// MaxResultBytes caps a single tool result (default 8192).
	MaxResultBytes int `yaml:"max_result_bytes"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	cfg := &Config{
		Model: ModelConfig{
			Name:     "qwen3-coder-next",
			Provider: "ollama",
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Model.Provider == "" {
		c.Model.Provider = "ollama"
	}
	if c.Model.OllamaURL == "" {
		c.Model.OllamaURL = "http://localhost:11434"
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 3
	}
	if c.Agent.MaxToolRounds <= 0 {
		c.Agent.MaxToolRounds = 8
	}
	if c.Agent.MaxResultBytes <= 0 {
		c.Agent.MaxResultBytes = 8192
	}
}
