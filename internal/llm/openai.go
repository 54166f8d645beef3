package llm

import (
	"context"
	"encoding/json"

	"github.com/fyrsmithlabs/scout/internal/config"
)

const openaiDefaultURL = "https://api.openai.com/v1/chat/completions"

// openaiProvider calls the OpenAI Chat Completions API.
type openaiProvider struct {
	cfg       config.LLMConfig
	pc        config.ProviderConfig
	transport Transport
}

func newOpenAIProvider(cfg config.LLMConfig, transport Transport) *openaiProvider {
	return &openaiProvider{cfg: cfg, pc: cfg.OpenAI, transport: transport}
}

func (p *openaiProvider) Name() string { return config.ProviderOpenAI }

func (p *openaiProvider) Available() bool { return p.pc.APIKey.IsSet() }

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []openaiMessage `json:"messages"`
}

func (p *openaiProvider) Chat(ctx context.Context, prompt string, opts Options) (string, *Error) {
	if !p.Available() {
		return "", &Error{Kind: KindMissingAPIKey, Provider: p.Name()}
	}

	req := resolveRequest(p.cfg, p.pc, opts)
	body := openaiRequest{
		Model:       req.model,
		MaxTokens:   req.maxTokens,
		Temperature: req.temperature,
		Messages:    []openaiMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"Authorization": "Bearer " + p.pc.APIKey.Value(),
	}

	url := p.pc.BaseURL
	if url == "" {
		url = openaiDefaultURL
	}

	resp, err := p.transport.Post(ctx, url, headers, body, req.timeout)
	return handleResponse(resp, err, parseOpenAIResponse, p.Name())
}

// parseOpenAIResponse extracts text from a Chat Completions body.
// Message contents are concatenated across choices in order with no
// separator. A content_filter finish reason classifies as
// safety_blocked, an embedded error object as api_error, an empty or
// unrecognized choice list as unexpected_response.
func parseOpenAIResponse(body []byte) (string, *Error) {
	var parsed struct {
		Choices []struct {
			FinishReason string `json:"finish_reason"`
			Message      struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Kind: KindUnexpectedResponse, Provider: config.ProviderOpenAI, Body: string(body)}
	}

	if len(parsed.Error) > 0 && string(parsed.Error) != "null" {
		return "", &Error{Kind: KindAPIError, Provider: config.ProviderOpenAI, Body: string(body)}
	}
	if len(parsed.Choices) == 0 {
		return "", &Error{Kind: KindUnexpectedResponse, Provider: config.ProviderOpenAI, Body: string(body)}
	}

	text := ""
	for _, choice := range parsed.Choices {
		if choice.FinishReason == "content_filter" {
			return "", &Error{Kind: KindSafetyBlocked, Provider: config.ProviderOpenAI}
		}
		text += choice.Message.Content
	}
	return text, nil
}
