package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passthroughParser(text string) parseFunc {
	return func(body []byte) (string, *Error) {
		return text, nil
	}
}

func failingParser(cerr *Error) parseFunc {
	return func(body []byte) (string, *Error) {
		return "", cerr
	}
}

func TestHandleResponse_TransportFailure(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	_, cerr := handleResponse(nil, cause, passthroughParser("unused"), "anthropic")

	require.NotNil(t, cerr)
	assert.Equal(t, KindRequestFailed, cerr.Kind)
	assert.Equal(t, "anthropic", cerr.Provider)
	assert.True(t, errors.Is(cerr, cause), "transport cause must pass through unchanged")
	assert.True(t, cerr.Retryable())
}

func TestHandleResponse_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{429, KindRateLimited},
		{401, KindInvalidAPIKey},
		{403, KindForbidden},
		{529, KindOverloaded},
	}

	for _, tt := range tests {
		for _, body := range []string{"", "{}", "irrelevant body content"} {
			_, cerr := handleResponse(&Response{Status: tt.status, Body: []byte(body)}, nil, passthroughParser("x"), "openai")
			require.NotNil(t, cerr)
			assert.Equal(t, tt.want, cerr.Kind, "status %d body %q", tt.status, body)
			assert.Equal(t, tt.status, cerr.Status)
		}
	}
}

func TestHandleResponse_BadRequestCarriesBody(t *testing.T) {
	body := `{"error":{"message":"model not found"}}`

	_, cerr := handleResponse(&Response{Status: 400, Body: []byte(body)}, nil, passthroughParser("x"), "gemini")

	require.NotNil(t, cerr)
	assert.Equal(t, KindBadRequest, cerr.Kind)
	assert.Equal(t, body, cerr.Body)
	assert.False(t, cerr.Retryable())
}

func TestHandleResponse_OtherStatusesAreHTTPErrors(t *testing.T) {
	known := map[int]bool{400: true, 401: true, 403: true, 429: true, 529: true}
	body := "upstream exploded"

	for status := 400; status <= 599; status++ {
		if known[status] {
			continue
		}
		_, cerr := handleResponse(&Response{Status: status, Body: []byte(body)}, nil, passthroughParser("x"), "openai")
		require.NotNil(t, cerr, "status %d", status)
		assert.Equal(t, KindHTTPError, cerr.Kind, "status %d", status)
		assert.Equal(t, status, cerr.Status)
		assert.Equal(t, body, cerr.Body, "body must pass through unchanged")
	}
}

func TestHandleResponse_200DelegatesToParser(t *testing.T) {
	text, cerr := handleResponse(&Response{Status: 200, Body: []byte("{}")}, nil, passthroughParser("parsed text"), "anthropic")
	require.Nil(t, cerr)
	assert.Equal(t, "parsed text", text)

	parserErr := &Error{Kind: KindSafetyBlocked, Provider: "gemini"}
	_, cerr = handleResponse(&Response{Status: 200, Body: []byte("{}")}, nil, failingParser(parserErr), "gemini")
	assert.Same(t, parserErr, cerr, "parser output must be returned unchanged")
}

func TestErrorRetryable(t *testing.T) {
	retryable := []ErrorKind{KindRateLimited, KindOverloaded, KindRequestFailed}
	terminal := []ErrorKind{
		KindMissingAPIKey, KindInvalidAPIKey, KindForbidden, KindBadRequest,
		KindHTTPError, KindUnexpectedResponse, KindSafetyBlocked, KindAPIError,
	}

	for _, kind := range retryable {
		assert.True(t, (&Error{Kind: kind}).Retryable(), string(kind))
	}
	for _, kind := range terminal {
		assert.False(t, (&Error{Kind: kind}).Retryable(), string(kind))
	}
}

func TestErrorMessage(t *testing.T) {
	cerr := &Error{Kind: KindHTTPError, Provider: "openai", Status: 502}
	assert.Equal(t, "openai: http_error: status 502", cerr.Error())

	cerr = &Error{Kind: KindMissingAPIKey, Provider: "gemini"}
	assert.Equal(t, "gemini: missing_api_key", cerr.Error())
}
