// Package provider defines the capability interface for external
// image-generation services and classifies their failures. The wire formats
// of the individual services stay encapsulated behind Client implementations.
package provider

import "context"

// ReferenceImage is an entity or source image attached to a request to guide
// generation.
type ReferenceImage struct {
	Label    string
	Data     []byte
	MIMEType string
}

// Request is one "produce an image" call.
type Request struct {
	Prompt          string
	ReferenceImages []ReferenceImage
}

// Result is a successful generation: raw image bytes plus any text the model
// returned alongside.
type Result struct {
	Data     []byte
	MIMEType string
	Text     string
}

// Client is the single capability interface every generation service
// implements.
type Client interface {
	// Name identifies the service in image metadata and settings.
	Name() string
	// Generate produces a new image from the prompt and optional references.
	Generate(ctx context.Context, req Request) (*Result, error)
	// Edit produces a variation of source guided by the prompt.
	Edit(ctx context.Context, source ReferenceImage, req Request) (*Result, error)
}

// Registry maps service names to clients.
type Registry map[string]Client

// Lookup returns the client for name, falling back to fallback when name is
// empty.
func (r Registry) Lookup(name, fallback string) (Client, bool) {
	if name == "" {
		name = fallback
	}
	c, ok := r[name]
	return c, ok
}
