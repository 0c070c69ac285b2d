// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// Timeout bounds one completion round trip. There are no retries.
	Timeout time.Duration

	// Sampling parameters
	Temperature      float32
	MaxTokens        int
	FrequencyPenalty float32
	PresencePenalty  float32
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return NewConfigError("OPENAI_API_KEY is required")
	}
	if c.Model == "" {
		return NewConfigError("chat model is required")
	}
	if c.Timeout <= 0 {
		return NewConfigError("timeout must be positive")
	}
	if c.MaxTokens <= 0 {
		return NewConfigError(fmt.Sprintf("max tokens must be positive, got %d", c.MaxTokens))
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Model:            "gpt-3.5-turbo",
		Timeout:          60 * time.Second,
		Temperature:      0.7,
		MaxTokens:        200,
		FrequencyPenalty: 0.6,
		PresencePenalty:  0.4,
	}
}
