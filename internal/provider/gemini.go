package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultGeminiModel is the image-capable Gemini model used for both
// generation and edits. Overridable via DECKFORGE_GEMINI_MODEL.
const DefaultGeminiModel = "gemini-3-pro-image-preview"

// Gemini implements Client against the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini provider client.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, &Error{
			Kind:    KindInvalidCredentials,
			Service: "gemini",
			Message: "no API key configured",
		}
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Name identifies this service in image metadata.
func (g *Gemini) Name() string {
	return "gemini"
}

// Generate produces a new image from the prompt and any reference images.
func (g *Gemini) Generate(ctx context.Context, req Request) (*Result, error) {
	var parts []*genai.Part
	for _, ref := range req.ReferenceImages {
		if ref.Label != "" {
			parts = append(parts, &genai.Part{Text: fmt.Sprintf("Reference image of %s:", ref.Label)})
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: ref.MIMEType,
				Data:     ref.Data,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: req.Prompt})

	return g.call(ctx, parts, len(req.ReferenceImages))
}

// Edit produces a variation of the source image guided by the prompt. The
// source goes first so the model treats the text as an edit instruction.
func (g *Gemini) Edit(ctx context.Context, source ReferenceImage, req Request) (*Result, error) {
	parts := []*genai.Part{
		{InlineData: &genai.Blob{
			MIMEType: source.MIMEType,
			Data:     source.Data,
		}},
	}
	for _, ref := range req.ReferenceImages {
		if ref.Label != "" {
			parts = append(parts, &genai.Part{Text: fmt.Sprintf("Reference image of %s:", ref.Label)})
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: ref.MIMEType,
				Data:     ref.Data,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: req.Prompt})

	return g.call(ctx, parts, len(req.ReferenceImages)+1)
}

func (g *Gemini) call(ctx context.Context, parts []*genai.Part, imageParts int) (*Result, error) {
	start := time.Now()
	log.Info().
		Str("model", g.model).
		Int("image_parts", imageParts).
		Msg("Sending generation request to Gemini")

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, classify("gemini", err)
	}

	result := &Result{}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				result.Data = part.InlineData.Data
				result.MIMEType = part.InlineData.MIMEType
			}
			if part.Text != "" {
				result.Text += part.Text
			}
		}
	}

	if result.Data == nil {
		// The model answered with text only. Usually a soft refusal.
		return nil, &Error{
			Kind:    KindContentPolicy,
			Service: "gemini",
			Message: fmt.Sprintf("no image returned (text: %s)", truncate(result.Text, 200)),
		}
	}

	log.Info().
		Int("output_bytes", len(result.Data)).
		Str("output_mime", result.MIMEType).
		Dur("duration", time.Since(start)).
		Msg("Gemini generation complete")
	return result, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
