package logging

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level emitted: debug, info, warn, error.
	Level string `koanf:"level"`
	// Format selects the encoder: json or console.
	Format string `koanf:"format"`
	// OutputPaths are zap sink URLs (stderr, stdout, or file paths).
	OutputPaths []string `koanf:"output_paths"`
}

// NewDefaultConfig returns production defaults: info-level JSON to stderr.
func NewDefaultConfig() *Config {
	return &Config{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stderr"},
	}
}

// Validate checks the config for construction errors.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("level %q: %w", c.Level, err)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format %q: must be json or console", c.Format)
	}
	if len(c.OutputPaths) == 0 {
		return fmt.Errorf("output_paths must not be empty")
	}
	return nil
}
