// Package generate orchestrates calls to external image-generation services:
// it resolves the prompt and references from the store, fans the calls out
// under a concurrency cap with per-call failure isolation and retry, pushes
// successful results through the image post-processor, and persists them back
// to the store.
package generate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/deckforge/deckforge/internal/imageproc"
	"github.com/deckforge/deckforge/internal/jobs"
	"github.com/deckforge/deckforge/internal/pool"
	"github.com/deckforge/deckforge/internal/prompt"
	"github.com/deckforge/deckforge/internal/provider"
	"github.com/deckforge/deckforge/internal/store"
)

// MaxVariants caps how many variants one request may ask for.
const MaxVariants = 10

const (
	defaultMaxRetries   = 2
	defaultInitialDelay = time.Second
)

// Service drives generation requests end to end.
type Service struct {
	store       *store.Store
	providers   provider.Registry
	jobs        jobs.Store
	concurrency int

	maxRetries   int
	initialDelay time.Duration
}

// NewService creates the orchestrator. concurrency bounds simultaneous
// in-flight provider calls.
func NewService(st *store.Store, providers provider.Registry, jobStore jobs.Store, concurrency int) *Service {
	return &Service{
		store:        st,
		providers:    providers,
		jobs:         jobStore,
		concurrency:  concurrency,
		maxRetries:   defaultMaxRetries,
		initialDelay: defaultInitialDelay,
	}
}

// Result reports a generation request's outcome. A request for N variants
// that yields M successes (0 <= M <= N) is not an error: the caller gets the
// M stored images plus the failure list, and already-written images are
// never rolled back. Warning is set when every attempt failed.
type Result struct {
	Images  []store.GeneratedImage `json:"images"`
	Failed  []string               `json:"failed,omitempty"`
	Warning string                 `json:"warning,omitempty"`
}

// Generate produces count image variants for a slide and appends each
// success to the slide's record.
func (s *Service) Generate(ctx context.Context, deckID, slideID string, count int, serviceName string) (*Result, error) {
	if count < 1 || count > MaxVariants {
		return nil, &store.ValidationError{Msg: fmt.Sprintf("variant count must be between 1 and %d", MaxVariants)}
	}

	slide, err := s.store.GetSlide(deckID, slideID)
	if err != nil {
		return nil, err
	}
	if slide.NoImages {
		return nil, &store.ValidationError{Msg: fmt.Sprintf("slide %s is flagged noImages", slideID)}
	}

	deck, err := s.store.GetDeck(deckID)
	if err != nil {
		return nil, err
	}
	style, err := s.store.EffectiveVisualStyle(deckID, slideID)
	if err != nil {
		return nil, err
	}
	entities, err := s.store.MergedEntities(deckID)
	if err != nil {
		return nil, err
	}

	fullPrompt, parsed, err := prompt.BuildFullPrompt(style, slide.ImageDescription, entities, len(deck.ThemeImages))
	if err != nil {
		return nil, err
	}
	if len(parsed.Unknown) > 0 {
		log.Warn().Strs("unknown", parsed.Unknown).Str("slide", slideID).Msg("Unresolved entity references in image description")
	}

	client, ok := s.lookupClient(serviceName)
	if !ok {
		return nil, &store.ValidationError{Msg: fmt.Sprintf("unknown generation service %q", serviceName)}
	}

	refs := s.loadReferences(deck, slide.ImageDescription, entities)
	req := provider.Request{Prompt: fullPrompt, ReferenceImages: refs}

	results := s.fanOut(ctx, count, func(ctx context.Context) (*provider.Result, error) {
		return client.Generate(ctx, req)
	})

	return s.persist(deckID, slideID, client.Name(), fullPrompt, "", results)
}

// Tweak produces count edited variants of an existing image. The tweak
// prompt may reference entities; results carry the source image id.
func (s *Service) Tweak(ctx context.Context, deckID, slideID, imageID, tweakPrompt string, count int) (*Result, error) {
	if count < 1 || count > MaxVariants {
		return nil, &store.ValidationError{Msg: fmt.Sprintf("variant count must be between 1 and %d", MaxVariants)}
	}
	if tweakPrompt == "" {
		return nil, &store.ValidationError{Msg: "tweak prompt must not be empty"}
	}
	if len(tweakPrompt) > prompt.MaxPromptLength {
		return nil, &store.ValidationError{Msg: fmt.Sprintf("tweak prompt is %d characters, maximum is %d", len(tweakPrompt), prompt.MaxPromptLength)}
	}

	sourceData, sourceImg, err := s.store.ReadImage(deckID, slideID, imageID)
	if err != nil {
		return nil, err
	}
	entities, err := s.store.MergedEntities(deckID)
	if err != nil {
		return nil, err
	}

	parsed := prompt.ParseEntityReferences(tweakPrompt, entities)
	if len(parsed.Unknown) > 0 {
		log.Warn().Strs("unknown", parsed.Unknown).Str("slide", slideID).Msg("Unresolved entity references in tweak prompt")
	}

	client, ok := s.lookupClient(sourceImg.Service)
	if !ok {
		return nil, &store.ValidationError{Msg: fmt.Sprintf("unknown generation service %q", sourceImg.Service)}
	}

	source := provider.ReferenceImage{
		Data:     sourceData,
		MIMEType: imageproc.SniffMIME(sourceData),
	}
	req := provider.Request{Prompt: parsed.Text}

	results := s.fanOut(ctx, count, func(ctx context.Context) (*provider.Result, error) {
		return client.Edit(ctx, source, req)
	})

	return s.persist(deckID, slideID, client.Name(), parsed.Text, imageID, results)
}

// lookupClient resolves a service name, falling back to the configured
// default service when name is empty.
func (s *Service) lookupClient(name string) (provider.Client, bool) {
	fallback := "gemini"
	if settings, err := s.store.GetSettings(); err == nil {
		fallback = settings.DefaultService
	}
	return s.providers.Lookup(name, fallback)
}

// fanOut runs count identical provider calls under the concurrency cap, each
// wrapped in retry-with-backoff.
func (s *Service) fanOut(ctx context.Context, count int, call pool.Task[*provider.Result]) []pool.Result[*provider.Result] {
	tasks := make([]pool.Task[*provider.Result], count)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (*provider.Result, error) {
			return pool.RetryWithBackoff(ctx, call, s.maxRetries, s.initialDelay)
		}
	}
	return pool.ExecuteInParallel(ctx, tasks, s.concurrency)
}

// persist normalizes each successful result and appends it to the slide.
// Store writes happen sequentially in request order: every slide mutation
// reads and rewrites the whole record, so concurrent appends would lose
// updates.
func (s *Service) persist(deckID, slideID, serviceName, usedPrompt, sourceImageID string, results []pool.Result[*provider.Result]) (*Result, error) {
	out := &Result{Images: []store.GeneratedImage{}}

	for i, res := range results {
		if res.Err != nil {
			out.Failed = append(out.Failed, fmt.Sprintf("variant %d: %v", i+1, res.Err))
			continue
		}
		normalized, err := imageproc.Normalize(res.Value.Data)
		if err != nil {
			out.Failed = append(out.Failed, fmt.Sprintf("variant %d: %v", i+1, err))
			continue
		}
		img, err := s.store.AddGeneratedImage(deckID, slideID, normalized, serviceName, usedPrompt, sourceImageID)
		if err != nil {
			out.Failed = append(out.Failed, fmt.Sprintf("variant %d: %v", i+1, err))
			continue
		}
		out.Images = append(out.Images, *img)
	}

	if len(out.Images) == 0 && len(results) > 0 {
		out.Warning = "no images were generated"
	}

	log.Info().
		Str("deck", deckID).
		Str("slide", slideID).
		Int("requested", len(results)).
		Int("stored", len(out.Images)).
		Int("failed", len(out.Failed)).
		Msg("Generation request finished")
	return out, nil
}

// loadReferences gathers entity reference images and theme images for a
// generation request. Entities without a readable image are skipped; a
// reference is guidance, not a prerequisite.
func (s *Service) loadReferences(deck *store.Deck, description string, entities map[string]store.Entity) []provider.ReferenceImage {
	var refs []provider.ReferenceImage

	for _, ref := range prompt.ReferencedEntityImages(description, entities) {
		data, err := os.ReadFile(s.store.EntityImagePath(deck.ID, ref.Filename))
		if err != nil {
			log.Warn().Err(err).Str("entity", ref.Label).Msg("Skipping unreadable entity image")
			continue
		}
		refs = append(refs, provider.ReferenceImage{
			Label:    ref.Label,
			Data:     data,
			MIMEType: imageproc.SniffMIME(data),
		})
	}

	for _, name := range deck.ThemeImages {
		data, err := os.ReadFile(s.store.ThemeImagePath(deck.ID, name))
		if err != nil {
			log.Warn().Err(err).Str("theme", name).Msg("Skipping unreadable theme image")
			continue
		}
		refs = append(refs, provider.ReferenceImage{
			Label:    "the deck theme",
			Data:     data,
			MIMEType: imageproc.SniffMIME(data),
		})
	}
	return refs
}
