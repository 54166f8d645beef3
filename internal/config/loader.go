package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "SCOUT_"
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// vendorKeyEnv maps provider names to their conventional API key
// environment variables. These are honored without the SCOUT_ prefix so
// existing vendor tooling conventions keep working.
var vendorKeyEnv = map[string]string{
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// Load loads configuration from the YAML file at configPath, then
// overrides with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Vendor API key environment variables (ANTHROPIC_API_KEY, ...)
//  2. SCOUT_* environment variables (SCOUT_LLM_MAX_TOKENS, ...)
//  3. YAML config file (~/.config/scout/config.yaml by default)
//  4. Hardcoded defaults
//
// Environment variables map to YAML fields by stripping the prefix,
// lowercasing and replacing underscores with dots, with compound leaf
// names restored:
//
//	SCOUT_LLM_MAX_TOKENS       -> llm.max_tokens
//	SCOUT_SESSIONS_DIR         -> sessions.dir
//	SCOUT_LLM_ANTHROPIC_API_KEY -> llm.anthropic.api_key
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "scout", "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", transformEnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyVendorKeyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// readConfigFile opens and validates the config file through a single
// file descriptor to avoid TOCTOU races.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("config file %s is not a regular file", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// compoundLeaves restores underscore field names the dot mapping splits.
var compoundLeaves = map[string]string{
	"max.tokens":      "max_tokens",
	"api.key":         "api_key",
	"base.url":        "base_url",
	"export.interval": "export_interval",
}

func transformEnvKey(s string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	for split, joined := range compoundLeaves {
		key = strings.ReplaceAll(key, split, joined)
	}
	return key
}

// applyVendorKeyEnv fills API keys from the conventional vendor
// environment variables when the config did not set them.
func applyVendorKeyEnv(cfg *Config) {
	keys := map[string]*ProviderConfig{
		ProviderAnthropic: &cfg.LLM.Anthropic,
		ProviderOpenAI:    &cfg.LLM.OpenAI,
		ProviderGemini:    &cfg.LLM.Gemini,
	}
	for name, pc := range keys {
		if pc.APIKey.IsSet() {
			continue
		}
		if v := os.Getenv(vendorKeyEnv[name]); v != "" {
			pc.APIKey = Secret(v)
		}
	}
}
