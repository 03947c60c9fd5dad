package client

import (
	"fmt"
	"net/http"
)

// Kind classifies a failed page fetch.
type Kind string

const (
	// KindTransport covers request failures and non-success statuses.
	KindTransport Kind = "transport"
	// KindMalformed covers payloads that are not a well-formed page.
	KindMalformed Kind = "malformed"
)

// Error describes a failed page fetch. A fetch that returns *Error has
// delivered no page: the caller's cursor state is unchanged and the
// same page can be requested again.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("history endpoint: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("history endpoint: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same request may succeed.
// Only transport failures qualify: request errors, rate limiting and
// server errors. A malformed payload will stay malformed.
func (e *Error) Retryable() bool {
	if e.Kind != KindTransport {
		return false
	}
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}
