package ai

import (
	"time"

	"github.com/pkg/errors"

	"github.com/openclaw/assistant/internal/profile"
)

// Config holds the LLM provider configuration.
type Config struct {
	Enabled bool

	BaseURL    string
	APIKey     string
	MaxRetries int
	Timeout    time.Duration

	// ModelOverrides replaces the default model name for a class. Useful for
	// pointing a class at a different upstream model without a redeploy.
	ModelOverrides map[ModelClass]string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.openai.com/v1",
		MaxRetries: 3,
		Timeout:    60 * time.Second,
	}
}

// NewConfigFromProfile creates LLM config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = p.IsAIEnabled()
	if !cfg.Enabled {
		return cfg
	}

	cfg.APIKey = p.AIAPIKey
	if p.AIBaseURL != "" {
		cfg.BaseURL = p.AIBaseURL
	}

	overrides := map[ModelClass]string{}
	if p.AIHaikuModel != "" {
		overrides[ModelClassHaiku] = p.AIHaikuModel
	}
	if p.AISonnetModel != "" {
		overrides[ModelClassSonnet] = p.AISonnetModel
	}
	if p.AIOpusModel != "" {
		overrides[ModelClassOpus] = p.AIOpusModel
	}
	if len(overrides) > 0 {
		cfg.ModelOverrides = overrides
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.BaseURL == "" {
		return errors.New("LLM base URL is required")
	}
	return nil
}

// ModelName returns the upstream model name for a class, honoring overrides.
func (c *Config) ModelName(class ModelClass) string {
	if name, ok := c.ModelOverrides[class]; ok {
		return name
	}
	return class.Spec().Name
}
