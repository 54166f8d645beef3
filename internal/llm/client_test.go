package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/scout/internal/config"
)

func TestClient_ProviderAvailable(t *testing.T) {
	cfg := config.DefaultConfig().LLM
	cfg.OpenAI.APIKey = "sk-oai"
	client := NewClient(cfg, WithTransport(&fakeTransport{}))

	assert.True(t, client.ProviderAvailable("openai"))
	assert.False(t, client.ProviderAvailable("anthropic"))
	assert.False(t, client.ProviderAvailable("gemini"))
	assert.False(t, client.ProviderAvailable("mistral"))
}

func TestClient_AvailableProviders(t *testing.T) {
	cfg := config.DefaultConfig().LLM
	client := NewClient(cfg, WithTransport(&fakeTransport{}))
	assert.Empty(t, client.AvailableProviders())

	cfg.Anthropic.APIKey = "a"
	cfg.Gemini.APIKey = "g"
	client = NewClient(cfg, WithTransport(&fakeTransport{}))
	assert.Equal(t, []string{"anthropic", "gemini"}, client.AvailableProviders())
}

func TestClient_ChatUsesDefaultProvider(t *testing.T) {
	cfg := testLLMConfig()
	cfg.Provider = config.ProviderOpenAI
	transport := &fakeTransport{resp: &Response{
		Status: 200,
		Body:   []byte(`{"choices":[{"message":{"content":"answer"}}]}`),
	}}
	client := NewClient(cfg, WithTransport(transport))

	text, err := client.Chat(context.Background(), "question", Options{})
	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	assert.Equal(t, openaiDefaultURL, transport.lastURL)
}

func TestClient_ChatExplicitProviderWins(t *testing.T) {
	cfg := testLLMConfig()
	cfg.Provider = config.ProviderOpenAI
	transport := &fakeTransport{resp: &Response{
		Status: 200,
		Body:   []byte(`{"content":[{"type":"text","text":"answer"}]}`),
	}}
	client := NewClient(cfg, WithTransport(transport))

	text, err := client.Chat(context.Background(), "question", Options{Provider: config.ProviderAnthropic})
	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	assert.Equal(t, anthropicDefaultURL, transport.lastURL)
}

func TestClient_ChatUnknownProvider(t *testing.T) {
	client := NewClient(testLLMConfig(), WithTransport(&fakeTransport{}))

	_, err := client.Chat(context.Background(), "question", Options{Provider: "mistral"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestClient_ChatMissingKeyNoNetwork(t *testing.T) {
	cfg := config.DefaultConfig().LLM
	transport := &fakeTransport{resp: &Response{Status: 200, Body: []byte(`{}`)}}
	client := NewClient(cfg, WithTransport(transport))

	_, err := client.Chat(context.Background(), "question", Options{})
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, KindMissingAPIKey, cerr.Kind)
	assert.Zero(t, transport.calls)
}

func TestClient_ChatClassifiedErrorsPropagate(t *testing.T) {
	cfg := testLLMConfig()
	transport := &fakeTransport{resp: &Response{Status: 429, Body: []byte("slow down")}}
	client := NewClient(cfg, WithTransport(transport))

	_, err := client.Chat(context.Background(), "question", Options{})
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, KindRateLimited, cerr.Kind)
	assert.True(t, cerr.Retryable())
}
