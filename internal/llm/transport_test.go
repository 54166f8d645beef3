package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Post(t *testing.T) {
	var gotContentType, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer srv.Close()

	transport := NewHTTPTransport()
	resp, err := transport.Post(context.Background(), srv.URL,
		map[string]string{"Authorization": "Bearer token"},
		map[string]string{"prompt": "hi"},
		5*time.Second,
	)
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, resp.Status, "non-2xx statuses are not transport errors")
	assert.Equal(t, "short and stout", string(resp.Body))
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, "hi", gotBody["prompt"])
}

func TestHTTPTransport_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	transport := NewHTTPTransport()
	_, err := transport.Post(context.Background(), srv.URL, nil, map[string]string{}, 20*time.Millisecond)
	require.Error(t, err, "timeout surfaces as a transport failure")
}

func TestHTTPTransport_Connectionrefused(t *testing.T) {
	transport := NewHTTPTransport()
	_, err := transport.Post(context.Background(), "http://127.0.0.1:1", nil, map[string]string{}, time.Second)
	require.Error(t, err)
}
