package llm

import "net/http"

// anthropicOverloaded is Anthropic's non-standard overloaded status.
const statusOverloaded = 529

// parseFunc extracts the generated text from a vendor 200 body. It is a
// pure function: any body produces either text or a classified *Error.
type parseFunc func(body []byte) (string, *Error)

// handleResponse classifies a transport outcome. It is total over all
// integer status codes and never reinterprets parser output: a 200 body
// is the parser's to judge, everything else maps by status alone.
func handleResponse(resp *Response, transportErr error, parse parseFunc, provider string) (string, *Error) {
	if transportErr != nil {
		return "", requestFailed(provider, transportErr)
	}

	switch resp.Status {
	case http.StatusOK:
		return parse(resp.Body)
	case http.StatusTooManyRequests:
		return "", &Error{Kind: KindRateLimited, Provider: provider, Status: resp.Status}
	case http.StatusUnauthorized:
		return "", &Error{Kind: KindInvalidAPIKey, Provider: provider, Status: resp.Status}
	case http.StatusForbidden:
		return "", &Error{Kind: KindForbidden, Provider: provider, Status: resp.Status}
	case statusOverloaded:
		return "", &Error{Kind: KindOverloaded, Provider: provider, Status: resp.Status}
	case http.StatusBadRequest:
		return "", &Error{Kind: KindBadRequest, Provider: provider, Status: resp.Status, Body: string(resp.Body)}
	default:
		return "", &Error{Kind: KindHTTPError, Provider: provider, Status: resp.Status, Body: string(resp.Body)}
	}
}
