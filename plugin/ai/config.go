package ai

import (
	"errors"

	"github.com/calendai/calendai/internal/profile"
)

// Config represents LLM configuration for the assistant core.
type Config struct {
	APIKey  string
	BaseURL string

	// Model is used for extraction and text generation.
	Model string

	// RouterModel is the lightweight model used for intent classification.
	RouterModel string
}

// NewConfigFromProfile creates LLM config from the profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		APIKey:      p.LLMAPIKey,
		BaseURL:     p.LLMBaseURL,
		Model:       p.LLMModel,
		RouterModel: p.RouterModel,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.Model == "" {
		return errors.New("LLM model is required")
	}
	if c.RouterModel == "" {
		c.RouterModel = c.Model
	}
	return nil
}
