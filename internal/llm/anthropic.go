package llm

import (
	"context"
	"encoding/json"

	"github.com/fyrsmithlabs/scout/internal/config"
)

const (
	anthropicDefaultURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
)

// anthropicProvider calls the Anthropic Messages API.
type anthropicProvider struct {
	cfg       config.LLMConfig
	pc        config.ProviderConfig
	transport Transport
}

func newAnthropicProvider(cfg config.LLMConfig, transport Transport) *anthropicProvider {
	return &anthropicProvider{cfg: cfg, pc: cfg.Anthropic, transport: transport}
}

func (p *anthropicProvider) Name() string { return config.ProviderAnthropic }

func (p *anthropicProvider) Available() bool { return p.pc.APIKey.IsSet() }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

func (p *anthropicProvider) Chat(ctx context.Context, prompt string, opts Options) (string, *Error) {
	if !p.Available() {
		return "", &Error{Kind: KindMissingAPIKey, Provider: p.Name()}
	}

	req := resolveRequest(p.cfg, p.pc, opts)
	body := anthropicRequest{
		Model:       req.model,
		MaxTokens:   req.maxTokens,
		Temperature: req.temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         p.pc.APIKey.Value(),
		"anthropic-version": anthropicVersion,
	}

	url := p.pc.BaseURL
	if url == "" {
		url = anthropicDefaultURL
	}

	resp, err := p.transport.Post(ctx, url, headers, body, req.timeout)
	return handleResponse(resp, err, parseAnthropicResponse, p.Name())
}

// parseAnthropicResponse extracts text from an Anthropic Messages body.
// Text blocks are concatenated in order with no separator. A refusal
// stop reason classifies as safety_blocked, an embedded error object as
// api_error, anything else unrecognized as unexpected_response.
func parseAnthropicResponse(body []byte) (string, *Error) {
	var parsed struct {
		Type       string `json:"type"`
		StopReason string `json:"stop_reason"`
		Content    []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Kind: KindUnexpectedResponse, Provider: config.ProviderAnthropic, Body: string(body)}
	}

	if parsed.Type == "error" || len(parsed.Error) > 0 {
		return "", &Error{Kind: KindAPIError, Provider: config.ProviderAnthropic, Body: string(body)}
	}
	if parsed.StopReason == "refusal" {
		return "", &Error{Kind: KindSafetyBlocked, Provider: config.ProviderAnthropic}
	}

	text := ""
	seen := false
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
			seen = true
		}
	}
	if !seen {
		return "", &Error{Kind: KindUnexpectedResponse, Provider: config.ProviderAnthropic, Body: string(body)}
	}
	return text, nil
}
