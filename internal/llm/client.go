package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/scout/internal/config"
)

// Client is the façade over all known providers. The registry is built
// once at construction and never mutated.
type Client struct {
	cfg       config.LLMConfig
	providers map[string]Provider
	logger    *zap.Logger
	metrics   *Metrics
}

// ClientOption customizes client construction.
type ClientOption func(*clientOptions)

type clientOptions struct {
	transport Transport
	logger    *zap.Logger
}

// WithTransport replaces the default HTTP transport, mainly for tests.
func WithTransport(t Transport) ClientOption {
	return func(o *clientOptions) { o.transport = t }
}

// WithLogger attaches a logger to the client.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = logger }
}

// NewClient creates a client with one provider per known vendor.
func NewClient(cfg config.LLMConfig, opts ...ClientOption) *Client {
	o := clientOptions{
		transport: NewHTTPTransport(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		cfg:       cfg,
		providers: newProviders(cfg, o.transport),
		logger:    o.logger,
		metrics:   NewMetrics(o.logger),
	}
}

// ProviderAvailable reports whether the named provider has an API key
// configured. Unknown names are simply unavailable.
func (c *Client) ProviderAvailable(name string) bool {
	p, ok := c.providers[name]
	return ok && p.Available()
}

// AvailableProviders returns the names of all providers with configured
// API keys, in stable order.
func (c *Client) AvailableProviders() []string {
	var names []string
	for _, name := range config.ProviderNames() {
		if c.ProviderAvailable(name) {
			names = append(names, name)
		}
	}
	return names
}

// Chat resolves the target provider (explicit option or configured
// default) and delegates. The returned error is always a *Error, so
// callers can either inspect its Kind or propagate it as-is.
func (c *Client) Chat(ctx context.Context, prompt string, opts Options) (string, error) {
	name := opts.Provider
	if name == "" {
		name = c.cfg.Provider
	}

	provider, ok := c.providers[name]
	if !ok {
		return "", fmt.Errorf("unknown provider %q", name)
	}

	start := time.Now()
	text, cerr := provider.Chat(ctx, prompt, opts)
	c.metrics.RecordChat(ctx, name, time.Since(start), cerr)

	if cerr != nil {
		c.logger.Warn("chat failed",
			zap.String("provider", name),
			zap.String("kind", string(cerr.Kind)),
			zap.Bool("retryable", cerr.Retryable()),
		)
		return "", cerr
	}

	c.logger.Debug("chat completed",
		zap.String("provider", name),
		zap.Int("response_chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}
