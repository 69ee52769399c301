package provider

import (
	"fmt"
	"strings"
)

// ErrorKind categorizes provider failures into the retryable and the
// terminal. Terminal kinds must never be retried: the call cannot succeed
// and retrying it only burns quota.
type ErrorKind int

const (
	// KindTransient covers network errors, timeouts and provider hiccups.
	KindTransient ErrorKind = iota
	// KindRateLimited is transient but caused by quota pressure.
	KindRateLimited
	// KindInvalidCredentials means the API key is missing, invalid or revoked.
	KindInvalidCredentials
	// KindContentPolicy means the provider rejected the prompt or image.
	KindContentPolicy
	// KindNotFound means the requested model or resource does not exist.
	KindNotFound
)

// Error is a classified provider failure.
type Error struct {
	Kind    ErrorKind
	Service string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Service, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether a retry can succeed for this kind of failure.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindInvalidCredentials, KindContentPolicy, KindNotFound:
		return false
	default:
		return true
	}
}

// classify buckets a raw provider error by message inspection. The Gemini
// SDK does not expose a stable error taxonomy, so this matches the status
// strings the API actually returns.
func classify(service string, err error) *Error {
	msg := strings.ToLower(err.Error())

	kind := KindTransient
	switch {
	case strings.Contains(msg, "api key") ||
		strings.Contains(msg, "api_key_invalid") ||
		strings.Contains(msg, "permission_denied") ||
		strings.Contains(msg, "unauthenticated"):
		kind = KindInvalidCredentials
	case strings.Contains(msg, "safety") ||
		strings.Contains(msg, "blocked") ||
		strings.Contains(msg, "content policy") ||
		strings.Contains(msg, "prohibited"):
		kind = KindContentPolicy
	case strings.Contains(msg, "not found") ||
		strings.Contains(msg, "not_found"):
		kind = KindNotFound
	case strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "429"):
		kind = KindRateLimited
	}

	return &Error{
		Kind:    kind,
		Service: service,
		Message: "generation request failed",
		Err:     err,
	}
}
