package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ModelConfig holds credentials and model selection for one LLM provider.
type ModelConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model,omitempty"`
}

// ProvidersConfig selects the active LLM provider and holds per-provider
// settings. API keys may also come from the environment (ANTHROPIC_API_KEY,
// OPENAI_API_KEY, GEMINI_API_KEY), which takes precedence over the file.
type ProvidersConfig struct {
	Active    string      `json:"active"` // "anthropic", "openai" or "google"
	Anthropic ModelConfig `json:"anthropic"`
	OpenAI    ModelConfig `json:"openai"`
	Google    ModelConfig `json:"google"`
}

// ExaConfig holds Exa AI Search API configuration
type ExaConfig struct {
	APIKey string `json:"api_key"`
}

// GooglePSEConfig holds Google Programmable Search Engine configuration
type GooglePSEConfig struct {
	APIKey string `json:"api_key"`
	CX     string `json:"cx"` // Search Engine ID
}

// SearchConfig holds configuration for web search providers
type SearchConfig struct {
	Provider  string          `json:"provider"` // "exa", "google_pse" or ""
	Exa       ExaConfig       `json:"exa"`
	GooglePSE GooglePSEConfig `json:"google_pse"`
}

// AgentConfig bundles the orchestrator's runtime knobs.
type AgentConfig struct {
	DefaultAutonomy    string `json:"default_autonomy"`      // "conservative", "moderate", "aggressive"
	WallClockSeconds   int    `json:"wall_clock_seconds"`    // hard budget per turn
	HistoryLimit       int    `json:"history_limit"`         // execution steps retained per session
	SessionIdleMinutes int    `json:"session_idle_minutes"`  // idle sessions are evicted after this
	ReflectionOverride *bool  `json:"reflection,omitempty"`  // overrides the autonomy preset when set
	MaxScrapeBytes     int    `json:"max_scrape_bytes"`      // body cap for page fetches
	FetchTimeoutSecs   int    `json:"fetch_timeout_seconds"` // timeout for page fetches
}

// Config represents application configuration
type Config struct {
	Addr        string          `json:"addr"`
	StoragePath string          `json:"storage_path"`
	LogLevel    string          `json:"log_level"` // debug, info, warn, error, none
	LogPath     string          `json:"log_path,omitempty"`
	Temperature float64         `json:"temperature"`
	Providers   ProvidersConfig `json:"providers"`
	Search      SearchConfig    `json:"search"`
	Agent       AgentConfig     `json:"agent"`
}

func defaultStateDir() string {
	if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
		return filepath.Join(stateHome, "quill")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "state", "quill")
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	stateDir := defaultStateDir()
	return &Config{
		Addr:        "localhost:8941",
		StoragePath: filepath.Join(stateDir, "quill.db"),
		LogLevel:    "info",
		LogPath:     filepath.Join(stateDir, "quill.log"),
		Temperature: 0.7,
		Providers: ProvidersConfig{
			Active:    "anthropic",
			Anthropic: ModelConfig{Model: "claude-3-5-sonnet-20241022"},
			OpenAI:    ModelConfig{Model: "gpt-4o-mini"},
			Google:    ModelConfig{Model: "gemini-2.0-flash"},
		},
		Agent: AgentConfig{
			DefaultAutonomy:    "moderate",
			WallClockSeconds:   300,
			HistoryLimit:       100,
			SessionIdleMinutes: 60,
			MaxScrapeBytes:     1_000_000,
			FetchTimeoutSecs:   30,
		},
	}
}

// Load reads configuration from path, applying defaults for missing fields
// and environment overrides for provider credentials. A missing file is not
// an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration to path as indented JSON.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Providers.Anthropic.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Providers.OpenAI.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Providers.Google.APIKey = key
	}
	if key := os.Getenv("EXA_API_KEY"); key != "" {
		c.Search.Exa.APIKey = key
		if c.Search.Provider == "" {
			c.Search.Provider = "exa"
		}
	}
}

func (c *Config) normalize() {
	if c.Agent.WallClockSeconds <= 0 {
		c.Agent.WallClockSeconds = 300
	}
	if c.Agent.HistoryLimit <= 0 {
		c.Agent.HistoryLimit = 100
	}
	if c.Agent.SessionIdleMinutes <= 0 {
		c.Agent.SessionIdleMinutes = 60
	}
	if c.Agent.MaxScrapeBytes <= 0 {
		c.Agent.MaxScrapeBytes = 1_000_000
	}
	if c.Agent.FetchTimeoutSecs <= 0 {
		c.Agent.FetchTimeoutSecs = 30
	}
	if c.Agent.DefaultAutonomy == "" {
		c.Agent.DefaultAutonomy = "moderate"
	}
}
