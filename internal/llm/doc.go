// Package llm unifies the Anthropic, OpenAI and Gemini chat APIs behind
// one request/response contract with a closed error taxonomy.
//
// Each provider builds its vendor-specific HTTP request and parses its
// vendor-specific response body; transport and HTTP status handling are
// shared. Expected failure modes never panic: every path returns a
// classified *Error whose Kind is one of the enumerated ErrorKind
// values, so callers can match exhaustively and decide whether a retry
// is worthwhile.
//
// Providers are registered in an immutable registry built once by New;
// selection is a map lookup keyed by provider name. A provider without
// an API key fails fast with KindMissingAPIKey before any network call.
package llm
