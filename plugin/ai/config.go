package ai

import (
	"errors"

	"github.com/quillhq/concierge/internal/profile"
)

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider      string  // openai, deepseek, ollama (OpenAI-compatible)
	Model         string  // e.g. gpt-4o-mini, deepseek-chat
	APIKey        string
	BaseURL       string
	MaxTokens     int     // default: 2048
	Temperature   float32 // default: 0.3
	MaxRetries    int     // default: 3
	MaxConcurrent int     // default: 8
}

// NewLLMConfigFromProfile creates LLM config from the runtime profile.
func NewLLMConfigFromProfile(p *profile.Profile) *LLMConfig {
	return &LLMConfig{
		Provider:    p.LLMProvider,
		Model:       p.LLMModel,
		APIKey:      p.LLMAPIKey,
		BaseURL:     p.LLMBaseURL,
		MaxTokens:   2048,
		Temperature: 0.3,
	}
}

// Validate validates the configuration.
func (c *LLMConfig) Validate() error {
	if c.Provider == "" {
		return errors.New("LLM provider is required")
	}
	if c.Model == "" {
		return errors.New("LLM model is required")
	}
	if c.Provider != "ollama" && c.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	return nil
}
