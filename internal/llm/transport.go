package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Response is the raw outcome of an HTTP exchange. Status carries the
// HTTP status code verbatim; non-2xx responses are not transport errors.
type Response struct {
	Status int
	Body   []byte
}

// Transport posts JSON bodies. Providers never assume more than this
// contract, which keeps them testable without a live network.
type Transport interface {
	Post(ctx context.Context, url string, headers map[string]string, body any, timeout time.Duration) (*Response, error)
}

// HTTPTransport is the net/http backed Transport.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates the default transport. Per-call timeouts are
// applied through the request context, not the client.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{client: &http.Client{}}
}

// Post sends body as JSON and reads the full response. A timeout
// surfaces as an ordinary transport error through the context deadline.
func (t *HTTPTransport) Post(ctx context.Context, url string, headers map[string]string, body any, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &Response{Status: resp.StatusCode, Body: respBody}, nil
}
