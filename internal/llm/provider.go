package llm

import (
	"context"

	"github.com/fyrsmithlabs/scout/internal/config"
)

// Provider sends one prompt to a vendor chat API and returns the
// generated text or a classified *Error.
type Provider interface {
	// Name returns the provider label used in errors and selection.
	Name() string
	// Available reports whether an API key is configured.
	Available() bool
	// Chat sends prompt with the resolved options. A provider without
	// an API key returns KindMissingAPIKey without touching the
	// network, regardless of the other options.
	Chat(ctx context.Context, prompt string, opts Options) (string, *Error)
}

// newProviders builds the fixed provider set from config. The returned
// map is never mutated after construction.
func newProviders(cfg config.LLMConfig, transport Transport) map[string]Provider {
	return map[string]Provider{
		config.ProviderAnthropic: newAnthropicProvider(cfg, transport),
		config.ProviderOpenAI:    newOpenAIProvider(cfg, transport),
		config.ProviderGemini:    newGeminiProvider(cfg, transport),
	}
}
