// Package config provides configuration loading for scout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Provider names known to scout. The set is fixed at compile time; the
// client builds its registry from it.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// ProviderNames returns all known provider names in stable order.
func ProviderNames() []string {
	return []string{ProviderAnthropic, ProviderGemini, ProviderOpenAI}
}

// Config is the root configuration for scout.
type Config struct {
	Sessions  SessionsConfig  `koanf:"sessions"`
	Logging   LoggingConfig   `koanf:"logging"`
	LLM       LLMConfig       `koanf:"llm"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// SessionsConfig configures session persistence.
type SessionsConfig struct {
	// Dir is the root directory holding one subdirectory per session.
	Dir string `koanf:"dir"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is json or console.
	Format string `koanf:"format"`
}

// TelemetryConfig configures OTLP metric export. Disabled by default;
// the CLI works without a collector.
type TelemetryConfig struct {
	Enabled bool `koanf:"enabled"`
	// Endpoint is the OTLP collector address, host:port.
	Endpoint string `koanf:"endpoint"`
	// Protocol is grpc or http/protobuf.
	Protocol string `koanf:"protocol"`
	// Insecure disables TLS for the exporter connection.
	Insecure bool `koanf:"insecure"`
	// ExportInterval is the periodic reader's export interval.
	ExportInterval Duration `koanf:"export_interval"`
}

// LLMConfig configures provider selection and request options.
type LLMConfig struct {
	// Provider is the default provider when a session does not pick one.
	Provider string `koanf:"provider"`
	// Model overrides the provider's default model when non-empty.
	Model string `koanf:"model"`
	// Temperature is the sampling temperature sent with every request.
	Temperature float64 `koanf:"temperature"`
	// MaxTokens bounds the generated response length.
	MaxTokens int `koanf:"max_tokens"`
	// Timeout bounds each chat request.
	Timeout Duration `koanf:"timeout"`

	Anthropic ProviderConfig `koanf:"anthropic"`
	OpenAI    ProviderConfig `koanf:"openai"`
	Gemini    ProviderConfig `koanf:"gemini"`
}

// ProviderConfig holds per-vendor settings.
type ProviderConfig struct {
	// APIKey authenticates requests. Sourced from the vendor's
	// environment variable (ANTHROPIC_API_KEY, OPENAI_API_KEY,
	// GEMINI_API_KEY) when not set in the config file.
	APIKey Secret `koanf:"api_key"`
	// Model is the vendor model used when llm.model is empty.
	Model string `koanf:"model"`
	// BaseURL overrides the vendor endpoint, mainly for tests.
	BaseURL string `koanf:"base_url"`
}

// DefaultConfig returns the hardcoded defaults, lowest precedence.
func DefaultConfig() *Config {
	return &Config{
		Sessions: SessionsConfig{
			Dir: defaultSessionsDir(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		LLM: LLMConfig{
			Provider:    ProviderAnthropic,
			Temperature: 0.7,
			MaxTokens:   4096,
			Timeout:     Duration(300 * time.Second),
			Anthropic: ProviderConfig{
				Model: "claude-sonnet-4-5-20250929",
			},
			OpenAI: ProviderConfig{
				Model: "gpt-4o",
			},
			Gemini: ProviderConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			Endpoint:       "localhost:4317",
			Protocol:       "grpc",
			ExportInterval: Duration(15 * time.Second),
		},
	}
}

// ProviderFor returns the per-vendor settings for name.
func (c *Config) ProviderFor(name string) (ProviderConfig, error) {
	switch name {
	case ProviderAnthropic:
		return c.LLM.Anthropic, nil
	case ProviderOpenAI:
		return c.LLM.OpenAI, nil
	case ProviderGemini:
		return c.LLM.Gemini, nil
	default:
		return ProviderConfig{}, fmt.Errorf("unknown provider %q", name)
	}
}

// Validate checks the configuration for well-formedness. It does not
// require API keys; availability is checked per provider at call time.
func (c *Config) Validate() error {
	if c.Sessions.Dir == "" {
		return fmt.Errorf("sessions.dir is required")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	if _, err := c.ProviderFor(c.LLM.Provider); err != nil {
		return fmt.Errorf("llm.provider: %w", err)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be in [0, 2], got %v", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Timeout.Duration() <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout.Duration())
	}
	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
		}
		switch c.Telemetry.Protocol {
		case "grpc", "http/protobuf":
		default:
			return fmt.Errorf("telemetry.protocol must be grpc or http/protobuf, got %q", c.Telemetry.Protocol)
		}
		if c.Telemetry.ExportInterval.Duration() <= 0 {
			return fmt.Errorf("telemetry.export_interval must be positive, got %s", c.Telemetry.ExportInterval.Duration())
		}
	}
	return nil
}

func defaultSessionsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".scout", "sessions")
	}
	return filepath.Join(home, ".scout", "sessions")
}
