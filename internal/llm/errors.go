package llm

import "fmt"

// ErrorKind enumerates the closed set of failure classifications
// surfaced by this package.
type ErrorKind string

const (
	// KindMissingAPIKey means the provider has no API key configured.
	// Returned before any network call is attempted.
	KindMissingAPIKey ErrorKind = "missing_api_key"
	// KindRequestFailed means no HTTP response was obtained (DNS,
	// connect, timeout). The transport cause is wrapped.
	KindRequestFailed ErrorKind = "request_failed"
	// KindRateLimited maps HTTP 429.
	KindRateLimited ErrorKind = "rate_limited"
	// KindInvalidAPIKey maps HTTP 401.
	KindInvalidAPIKey ErrorKind = "invalid_api_key"
	// KindForbidden maps HTTP 403.
	KindForbidden ErrorKind = "forbidden"
	// KindOverloaded maps HTTP 529.
	KindOverloaded ErrorKind = "overloaded"
	// KindBadRequest maps HTTP 400; Body carries the response unchanged.
	KindBadRequest ErrorKind = "bad_request"
	// KindHTTPError maps any other non-200 status; Status and Body are
	// carried unchanged.
	KindHTTPError ErrorKind = "http_error"
	// KindUnexpectedResponse means a 200 body did not match any known
	// vendor schema; Body carries the original body unchanged.
	KindUnexpectedResponse ErrorKind = "unexpected_response"
	// KindSafetyBlocked means the vendor soft-refused the prompt inside
	// a 200 response (safety finish reason or block feedback).
	KindSafetyBlocked ErrorKind = "safety_blocked"
	// KindAPIError means the vendor returned an error object, possibly
	// under HTTP 200; Body carries the vendor payload unchanged.
	KindAPIError ErrorKind = "api_error"
)

// Error is the classified failure returned by providers, the response
// handler and the client façade.
type Error struct {
	// Kind is the taxonomy entry; always set.
	Kind ErrorKind
	// Provider is the provider label the failure came from.
	Provider string
	// Status is the HTTP status for status-mapped kinds, zero otherwise.
	Status int
	// Body is the raw response body for kinds that carry it.
	Body string
	// cause is the underlying transport error for KindRequestFailed.
	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.cause)
	case e.Kind == KindHTTPError:
		return fmt.Sprintf("%s: %s: status %d", e.Provider, e.Kind, e.Status)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
}

// Unwrap exposes the transport cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether the failure is transient. Rate limits,
// overload and transport failures are worth retrying; configuration and
// request errors are not.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindOverloaded, KindRequestFailed:
		return true
	case KindMissingAPIKey, KindInvalidAPIKey, KindForbidden, KindBadRequest,
		KindHTTPError, KindUnexpectedResponse, KindSafetyBlocked, KindAPIError:
		return false
	default:
		return false
	}
}

// requestFailed wraps a transport failure, reason passed through
// unchanged.
func requestFailed(provider string, cause error) *Error {
	return &Error{Kind: KindRequestFailed, Provider: provider, cause: cause}
}
