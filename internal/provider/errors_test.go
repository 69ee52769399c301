package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorRetryable(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{KindTransient, true},
		{KindRateLimited, true},
		{KindInvalidCredentials, false},
		{KindContentPolicy, false},
		{KindNotFound, false},
	}
	for _, tc := range tests {
		e := &Error{Kind: tc.kind, Service: "gemini", Message: "m"}
		if got := e.Retryable(); got != tc.want {
			t.Errorf("Kind %d: Retryable() = %v, want %v", tc.kind, got, tc.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	e := &Error{Kind: KindTransient, Service: "gemini", Message: "call failed", Err: cause}
	if !errors.Is(e, cause) {
		t.Error("Expected errors.Is to find the wrapped cause")
	}

	wrapped := fmt.Errorf("outer: %w", e)
	var got *Error
	if !errors.As(wrapped, &got) || got.Kind != KindTransient {
		t.Error("Expected errors.As to recover the classified error through wrapping")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want ErrorKind
	}{
		{"API key not valid. Please pass a valid API key.", KindInvalidCredentials},
		{"rpc error: code = Unauthenticated", KindInvalidCredentials},
		{"response blocked by safety settings", KindContentPolicy},
		{"model gemini-x not found", KindNotFound},
		{"googleapi: Error 429: quota exceeded", KindRateLimited},
		{"RESOURCE_EXHAUSTED", KindRateLimited},
		{"connection reset by peer", KindTransient},
	}
	for _, tc := range tests {
		got := classify("gemini", errors.New(tc.msg))
		if got.Kind != tc.want {
			t.Errorf("classify(%q): kind %d, want %d", tc.msg, got.Kind, tc.want)
		}
		if got.Service != "gemini" {
			t.Errorf("classify(%q): service %q", tc.msg, got.Service)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	fake := &stubClient{name: "gemini"}
	r := Registry{"gemini": fake}

	if c, ok := r.Lookup("gemini", "other"); !ok || c != fake {
		t.Error("Expected explicit name lookup to hit")
	}
	if c, ok := r.Lookup("", "gemini"); !ok || c != fake {
		t.Error("Expected empty name to use the fallback")
	}
	if _, ok := r.Lookup("unknown", "gemini"); ok {
		t.Error("Expected unknown explicit name to miss")
	}
}

type stubClient struct {
	name string
}

func (s *stubClient) Name() string { return s.name }
func (s *stubClient) Generate(_ context.Context, _ Request) (*Result, error) {
	return nil, nil
}
func (s *stubClient) Edit(_ context.Context, _ ReferenceImage, _ Request) (*Result, error) {
	return nil, nil
}
