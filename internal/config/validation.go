package config

import (
	"fmt"
	"os"
)

// Validate validates configuration values before any request is served.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// API key is read directly by Genkit's googlegenai plugin; fail fast
	// here instead of on the first completion call.
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required", ErrMissingAPIKey)
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}

	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidEmbedderModel)
	}

	if c.TopK < 1 || c.TopK > 50 {
		return fmt.Errorf("%w: must be between 1 and 50, got %d", ErrInvalidTopK, c.TopK)
	}

	if c.MaxRounds < 1 || c.MaxRounds > 100 {
		return fmt.Errorf("%w: must be between 1 and 100, got %d", ErrInvalidMaxRounds, c.MaxRounds)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}

	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}

	return nil
}
