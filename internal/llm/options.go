package llm

import (
	"time"

	"github.com/fyrsmithlabs/scout/internal/config"
)

// Options are per-call overrides. Zero values fall back to the resolved
// configuration; Temperature is a pointer because zero is a valid
// sampling temperature.
type Options struct {
	// Provider picks the target provider; empty means the configured
	// default. Only the client façade consults it.
	Provider string
	// Model overrides the configured model.
	Model string
	// Temperature overrides the configured sampling temperature.
	Temperature *float64
	// MaxTokens overrides the configured response length bound.
	MaxTokens int
	// Timeout overrides the configured per-request timeout.
	Timeout time.Duration
}

// request is a fully-resolved set of chat parameters.
type request struct {
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// resolveRequest merges per-call options over the configured defaults
// for one provider.
func resolveRequest(cfg config.LLMConfig, pc config.ProviderConfig, opts Options) request {
	r := request{
		model:       pc.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout.Duration(),
	}
	if cfg.Model != "" {
		r.model = cfg.Model
	}
	if opts.Model != "" {
		r.model = opts.Model
	}
	if opts.Temperature != nil {
		r.temperature = *opts.Temperature
	}
	if opts.MaxTokens > 0 {
		r.maxTokens = opts.MaxTokens
	}
	if opts.Timeout > 0 {
		r.timeout = opts.Timeout
	}
	return r
}
