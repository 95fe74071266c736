// Package provider wires configuration to concrete LLM clients.
package provider

import (
	"fmt"
	"strings"
	"sync"

	"github.com/quillworks/quill/internal/config"
	"github.com/quillworks/quill/internal/llm"
	"github.com/quillworks/quill/internal/logger"
)

// Manager creates and caches the active LLM client. The orchestrator treats
// a nil client as "model capability unavailable" and degrades to its
// deterministic fallbacks, so construction failures here are never fatal.
type Manager struct {
	cfg    *config.Config
	mu     sync.Mutex
	client llm.Client
}

// NewManager creates a provider manager for the given configuration.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// Client returns the active LLM client, creating it on first use.
// Returns nil when no provider is configured or construction fails.
func (m *Manager) Client() llm.Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return m.client
	}

	client, err := m.createClient()
	if err != nil {
		logger.Warn("LLM provider unavailable: %v", err)
		return nil
	}
	m.client = client
	return client
}

func (m *Manager) createClient() (llm.Client, error) {
	providers := m.cfg.Providers
	switch strings.ToLower(providers.Active) {
	case "anthropic":
		return llm.NewAnthropicClient(providers.Anthropic.APIKey, providers.Anthropic.Model)
	case "openai":
		return llm.NewOpenAIClient(providers.OpenAI.APIKey, providers.OpenAI.Model)
	case "google":
		return llm.NewGoogleAIClient(providers.Google.APIKey, providers.Google.Model)
	case "":
		return nil, fmt.Errorf("no LLM provider configured")
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providers.Active)
	}
}
