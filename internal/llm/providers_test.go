package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/scout/internal/config"
)

// fakeTransport records calls and replays a canned response.
type fakeTransport struct {
	calls   int
	lastURL string
	headers map[string]string
	body    any
	timeout time.Duration

	resp *Response
	err  error
}

func (f *fakeTransport) Post(ctx context.Context, url string, headers map[string]string, body any, timeout time.Duration) (*Response, error) {
	f.calls++
	f.lastURL = url
	f.headers = headers
	f.body = body
	f.timeout = timeout
	return f.resp, f.err
}

func testLLMConfig() config.LLMConfig {
	cfg := config.DefaultConfig().LLM
	cfg.Anthropic.APIKey = "sk-ant"
	cfg.OpenAI.APIKey = "sk-oai"
	cfg.Gemini.APIKey = "gm-key"
	return cfg
}

func TestProviders_MissingKeySkipsNetwork(t *testing.T) {
	cfg := config.DefaultConfig().LLM
	transport := &fakeTransport{resp: &Response{Status: 200, Body: []byte("{}")}}

	for name, provider := range newProviders(cfg, transport) {
		temp := 0.3
		_, cerr := provider.Chat(context.Background(), "hello", Options{
			Model:       "some-model",
			Temperature: &temp,
			MaxTokens:   128,
		})
		require.NotNil(t, cerr, name)
		assert.Equal(t, KindMissingAPIKey, cerr.Kind, name)
		assert.Equal(t, name, cerr.Provider)
	}
	assert.Zero(t, transport.calls, "no network call may be attempted without a key")
}

func TestAnthropicProvider_Request(t *testing.T) {
	cfg := testLLMConfig()
	transport := &fakeTransport{resp: &Response{
		Status: 200,
		Body:   []byte(`{"content":[{"type":"text","text":"Hi "},{"type":"text","text":"there"}],"stop_reason":"end_turn"}`),
	}}
	p := newAnthropicProvider(cfg, transport)

	text, cerr := p.Chat(context.Background(), "analyze this", Options{})
	require.Nil(t, cerr)
	assert.Equal(t, "Hi there", text)

	assert.Equal(t, anthropicDefaultURL, transport.lastURL)
	assert.Equal(t, "sk-ant", transport.headers["x-api-key"])
	assert.Equal(t, anthropicVersion, transport.headers["anthropic-version"])
	assert.Equal(t, 300*time.Second, transport.timeout)

	req, ok := transport.body.(anthropicRequest)
	require.True(t, ok)
	assert.Equal(t, cfg.Anthropic.Model, req.Model)
	assert.Equal(t, 4096, req.MaxTokens)
	assert.Equal(t, 0.7, req.Temperature)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "analyze this", req.Messages[0].Content)
}

func TestAnthropicProvider_OptionsOverrideDefaults(t *testing.T) {
	cfg := testLLMConfig()
	transport := &fakeTransport{resp: &Response{Status: 200, Body: []byte(`{"content":[{"type":"text","text":"ok"}]}`)}}
	p := newAnthropicProvider(cfg, transport)

	temp := 0.0
	_, cerr := p.Chat(context.Background(), "prompt", Options{
		Model:       "claude-opus-4-1",
		Temperature: &temp,
		MaxTokens:   256,
		Timeout:     10 * time.Second,
	})
	require.Nil(t, cerr)

	req := transport.body.(anthropicRequest)
	assert.Equal(t, "claude-opus-4-1", req.Model)
	assert.Equal(t, 0.0, req.Temperature)
	assert.Equal(t, 256, req.MaxTokens)
	assert.Equal(t, 10*time.Second, transport.timeout)
}

func TestParseAnthropicResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantText string
		wantKind ErrorKind
	}{
		{
			name:     "concatenates text blocks",
			body:     `{"content":[{"type":"text","text":"Hello, "},{"type":"text","text":"world!"}]}`,
			wantText: "Hello, world!",
		},
		{
			name:     "error object under 200",
			body:     `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`,
			wantKind: KindAPIError,
		},
		{
			name:     "refusal stop reason",
			body:     `{"content":[],"stop_reason":"refusal"}`,
			wantKind: KindSafetyBlocked,
		},
		{
			name:     "unknown shape",
			body:     `{"message":"totally different schema"}`,
			wantKind: KindUnexpectedResponse,
		},
		{
			name:     "invalid json",
			body:     `not json at all`,
			wantKind: KindUnexpectedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, cerr := parseAnthropicResponse([]byte(tt.body))
			if tt.wantKind == "" {
				require.Nil(t, cerr)
				assert.Equal(t, tt.wantText, text)
				return
			}
			require.NotNil(t, cerr)
			assert.Equal(t, tt.wantKind, cerr.Kind)
			if cerr.Kind == KindUnexpectedResponse || cerr.Kind == KindAPIError {
				assert.Equal(t, tt.body, cerr.Body, "body must be carried unchanged")
			}
		})
	}
}

func TestOpenAIProvider_Request(t *testing.T) {
	cfg := testLLMConfig()
	transport := &fakeTransport{resp: &Response{
		Status: 200,
		Body:   []byte(`{"choices":[{"message":{"content":"Hi"}}]}`),
	}}
	p := newOpenAIProvider(cfg, transport)

	text, cerr := p.Chat(context.Background(), "prompt", Options{})
	require.Nil(t, cerr)
	assert.Equal(t, "Hi", text)

	assert.Equal(t, openaiDefaultURL, transport.lastURL)
	assert.Equal(t, "Bearer sk-oai", transport.headers["Authorization"])

	req, ok := transport.body.(openaiRequest)
	require.True(t, ok)
	assert.Equal(t, cfg.OpenAI.Model, req.Model)
}

func TestParseOpenAIResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantText string
		wantKind ErrorKind
	}{
		{
			name:     "single choice",
			body:     `{"choices":[{"message":{"content":"Hi"}}]}`,
			wantText: "Hi",
		},
		{
			name:     "concatenates choices in order",
			body:     `{"choices":[{"message":{"content":"Hello, "}},{"message":{"content":"world!"}}]}`,
			wantText: "Hello, world!",
		},
		{
			name:     "empty choices",
			body:     `{"choices":[]}`,
			wantKind: KindUnexpectedResponse,
		},
		{
			name:     "error object under 200",
			body:     `{"error":{"message":"The model is overloaded","type":"server_error"}}`,
			wantKind: KindAPIError,
		},
		{
			name:     "content filter finish reason",
			body:     `{"choices":[{"finish_reason":"content_filter","message":{"content":""}}]}`,
			wantKind: KindSafetyBlocked,
		},
		{
			name:     "invalid json",
			body:     `<html>gateway error</html>`,
			wantKind: KindUnexpectedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, cerr := parseOpenAIResponse([]byte(tt.body))
			if tt.wantKind == "" {
				require.Nil(t, cerr)
				assert.Equal(t, tt.wantText, text)
				return
			}
			require.NotNil(t, cerr)
			assert.Equal(t, tt.wantKind, cerr.Kind)
		})
	}
}

func TestGeminiProvider_Request(t *testing.T) {
	cfg := testLLMConfig()
	transport := &fakeTransport{resp: &Response{
		Status: 200,
		Body:   []byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`),
	}}
	p := newGeminiProvider(cfg, transport)

	text, cerr := p.Chat(context.Background(), "prompt", Options{})
	require.Nil(t, cerr)
	assert.Equal(t, "ok", text)

	assert.Contains(t, transport.lastURL, geminiDefaultBaseURL+"/models/"+cfg.Gemini.Model+":generateContent")
	assert.Contains(t, transport.lastURL, "key=gm-key", "auth rides in the query parameter")
	assert.Empty(t, transport.headers)

	req, ok := transport.body.(geminiRequest)
	require.True(t, ok)
	require.Len(t, req.Contents, 1)
	assert.Equal(t, "prompt", req.Contents[0].Parts[0].Text)
	assert.Equal(t, 4096, req.GenerationConfig.MaxOutputTokens)
}

func TestParseGeminiResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantText string
		wantKind ErrorKind
	}{
		{
			name:     "concatenates parts",
			body:     `{"candidates":[{"content":{"parts":[{"text":"Hello, "},{"text":"world!"}]}}]}`,
			wantText: "Hello, world!",
		},
		{
			name:     "safety finish reason",
			body:     `{"candidates":[{"finishReason":"SAFETY","content":{"parts":[]}}]}`,
			wantKind: KindSafetyBlocked,
		},
		{
			name:     "prompt blocked",
			body:     `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			wantKind: KindSafetyBlocked,
		},
		{
			name:     "error object under 200",
			body:     `{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`,
			wantKind: KindAPIError,
		},
		{
			name:     "no candidates",
			body:     `{"candidates":[]}`,
			wantKind: KindUnexpectedResponse,
		},
		{
			name:     "invalid json",
			body:     `oops`,
			wantKind: KindUnexpectedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, cerr := parseGeminiResponse([]byte(tt.body))
			if tt.wantKind == "" {
				require.Nil(t, cerr)
				assert.Equal(t, tt.wantText, text)
				return
			}
			require.NotNil(t, cerr)
			assert.Equal(t, tt.wantKind, cerr.Kind)
		})
	}
}
