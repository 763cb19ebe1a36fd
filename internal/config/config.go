// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (RAGAPI_* prefix, runtime override)
//  2. Config file (./config.yaml)
//  3. Default values
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidTopK indicates the retrieval top-k value is out of range.
	ErrInvalidTopK = errors.New("invalid retrieval top_k")

	// ErrInvalidMaxRounds indicates the agent round bound is out of range.
	ErrInvalidMaxRounds = errors.New("invalid max rounds")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")
)

const (
	// DefaultModelName is the default chat completion model.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultEmbedderModel is the default embedding model.
	// text-embedding-004 outputs 768 dimensions, matching the pgvector
	// schema in db/migrations.
	DefaultEmbedderModel = "text-embedding-004"

	// DefaultTopK is the default number of sources per retrieval call.
	DefaultTopK = 5

	// DefaultMaxRounds bounds the agentic tool loop. The model decides when
	// to stop; this cap guarantees termination against a looping model.
	DefaultMaxRounds = 5

	// DefaultAddr is the default HTTP listen address.
	DefaultAddr = "127.0.0.1:8080"
)

// Config stores application configuration.
type Config struct {
	// Model configuration
	ModelName     string `mapstructure:"model_name"`
	EmbedderModel string `mapstructure:"embedder_model"`

	// Orchestration configuration
	TopK      int    `mapstructure:"top_k"`      // Sources per retrieval call
	MaxRounds int    `mapstructure:"max_rounds"` // Agentic loop bound
	PromptDir string `mapstructure:"prompt_dir"` // Optional on-disk template overrides

	// HTTP server configuration
	Addr string `mapstructure:"addr"`

	// Completion rate limiting (requests/sec sustained, burst)
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`

	// Storage configuration
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Observability configuration. Tracing is disabled when OTLPEndpoint
	// is empty.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
	Environment  string `mapstructure:"environment"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	// RAGAPI_MODEL_NAME, RAGAPI_POSTGRES_HOST, ...
	v.SetEnvPrefix("RAGAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)

	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("max_rounds", DefaultMaxRounds)

	v.SetDefault("addr", DefaultAddr)

	v.SetDefault("rate_limit", 10.0)
	v.SetDefault("rate_burst", 30)

	// PostgreSQL defaults for local development
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "ragapi")
	v.SetDefault("postgres_password", "ragapi_dev_password")
	v.SetDefault("postgres_db_name", "ragapi")
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("service_name", "ragapi")
	v.SetDefault("environment", "dev")
}

// FullModelName returns the provider-qualified model name for Genkit,
// e.g. "googleai/gemini-2.5-flash". If ModelName already contains a "/",
// it is returned as-is.
func (c *Config) FullModelName() string {
	if strings.Contains(c.ModelName, "/") {
		return c.ModelName
	}
	return "googleai/" + c.ModelName
}

// PostgresConnectionString returns the PostgreSQL DSN for pgx.
// Password is single-quoted to handle special characters.
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresUser,
		quoteDSNValue(c.PostgresPassword),
		c.PostgresDBName,
		c.PostgresSSLMode,
	)
}

// PostgresURL returns the PostgreSQL URL for golang-migrate.
// Uses url.URL for proper encoding of special characters in credentials.
func (c *Config) PostgresURL() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:     c.PostgresDBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.PostgresSSLMode),
	}
	return u.String()
}

// quoteDSNValue quotes a value for PostgreSQL key=value DSN format.
// Within single quotes, backslashes and single quotes are escaped.
func quoteDSNValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
