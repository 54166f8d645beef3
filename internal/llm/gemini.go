package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fyrsmithlabs/scout/internal/config"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiProvider calls the Gemini generateContent API. Authentication
// rides in a query parameter rather than a header.
type geminiProvider struct {
	cfg       config.LLMConfig
	pc        config.ProviderConfig
	transport Transport
}

func newGeminiProvider(cfg config.LLMConfig, transport Transport) *geminiProvider {
	return &geminiProvider{cfg: cfg, pc: cfg.Gemini, transport: transport}
}

func (p *geminiProvider) Name() string { return config.ProviderGemini }

func (p *geminiProvider) Available() bool { return p.pc.APIKey.IsSet() }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

func (p *geminiProvider) Chat(ctx context.Context, prompt string, opts Options) (string, *Error) {
	if !p.Available() {
		return "", &Error{Kind: KindMissingAPIKey, Provider: p.Name()}
	}

	req := resolveRequest(p.cfg, p.pc, opts)
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	body.GenerationConfig.Temperature = req.temperature
	body.GenerationConfig.MaxOutputTokens = req.maxTokens

	base := p.pc.BaseURL
	if base == "" {
		base = geminiDefaultBaseURL
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, req.model, p.pc.APIKey.Value())

	resp, err := p.transport.Post(ctx, url, nil, body, req.timeout)
	return handleResponse(resp, err, parseGeminiResponse, p.Name())
}

// parseGeminiResponse extracts text from a generateContent body. Parts
// are concatenated in order across candidates with no separator. A
// SAFETY finish reason or a prompt block classifies as safety_blocked,
// an embedded error object as api_error, anything else unrecognized as
// unexpected_response.
func parseGeminiResponse(body []byte) (string, *Error) {
	var parsed struct {
		Candidates []struct {
			FinishReason string `json:"finishReason"`
			Content      struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Kind: KindUnexpectedResponse, Provider: config.ProviderGemini, Body: string(body)}
	}

	if len(parsed.Error) > 0 && string(parsed.Error) != "null" {
		return "", &Error{Kind: KindAPIError, Provider: config.ProviderGemini, Body: string(body)}
	}
	if parsed.PromptFeedback.BlockReason != "" {
		return "", &Error{Kind: KindSafetyBlocked, Provider: config.ProviderGemini}
	}
	if len(parsed.Candidates) == 0 {
		return "", &Error{Kind: KindUnexpectedResponse, Provider: config.ProviderGemini, Body: string(body)}
	}

	text := ""
	for _, candidate := range parsed.Candidates {
		if candidate.FinishReason == "SAFETY" {
			return "", &Error{Kind: KindSafetyBlocked, Provider: config.ProviderGemini}
		}
		for _, part := range candidate.Content.Parts {
			text += part.Text
		}
	}
	return text, nil
}
