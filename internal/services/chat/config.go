// File: internal/services/chat/config.go
package chat

import "fmt"

type Config struct {
	// MaxMessageRunes caps inbound messages; longer text is cut, not rejected.
	MaxMessageRunes int
}

func (c *Config) Validate() error {
	if c.MaxMessageRunes <= 0 {
		return fmt.Errorf("max_message_runes must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		MaxMessageRunes: 2000,
	}
}
