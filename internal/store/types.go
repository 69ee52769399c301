package store

import "time"

// MaxThemeImages caps the number of theme reference images per deck.
const MaxThemeImages = 10

// Deck is the top-level record for one slide deck. The SlideIDs order is
// authoritative; every listed slide must exist as a subordinate record.
type Deck struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	VisualStyle string            `json:"visualStyle,omitempty"`
	Entities    map[string]Entity `json:"entities,omitempty"`
	ThemeImages []string          `json:"themeImages,omitempty"`
	SlideIDs    []string          `json:"slideIds"`
	// SlideSeq is the highest slide ordinal ever issued in this deck. It
	// only grows, so a deleted slide's id is never reissued.
	SlideSeq  int       `json:"slideSeq,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Slide is one slide's record. Order values across a deck's slides are a
// gap-free permutation of 0..count-1. A scene-start slide never carries an
// image: SceneStart implies NoImages.
type Slide struct {
	ID                  string           `json:"id"`
	Order               int              `json:"order"`
	SpeakerNotes        string           `json:"speakerNotes,omitempty"`
	ImageDescription    string           `json:"imageDescription,omitempty"`
	OverrideVisualStyle string           `json:"overrideVisualStyle,omitempty"`
	NoImages            bool             `json:"noImages,omitempty"`
	SceneStart          bool             `json:"sceneStart,omitempty"`
	SceneVisualStyle    string           `json:"sceneVisualStyle,omitempty"`
	Images              []GeneratedImage `json:"images,omitempty"`
}

// GeneratedImage records one generated variant attached to a slide. At most
// one image per slide is pinned; pin bookkeeping is maintained by the store's
// add/pin/delete operations, not by a hard constraint on the struct.
type GeneratedImage struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	CreatedAt     time.Time `json:"createdAt"`
	Service       string    `json:"service"`
	Prompt        string    `json:"prompt"`
	SourceImageID string    `json:"sourceImageId,omitempty"`
	IsPinned      bool      `json:"isPinned"`
}

// Entity is a named, image-backed reference usable as an @Name token in
// prompt text. Entities exist deck-scoped (inside Deck.Entities) and global
// (shared across decks); on a name collision the deck-local entity wins.
type Entity struct {
	Name   string   `json:"name"`
	Images []string `json:"images,omitempty"`
}

// DisplayName returns the human-readable form of the entity name used when
// substituting @Name tokens in prompt text (hyphens become spaces).
func (e Entity) DisplayName() string {
	out := make([]byte, len(e.Name))
	for i := 0; i < len(e.Name); i++ {
		if e.Name[i] == '-' {
			out[i] = ' '
		} else {
			out[i] = e.Name[i]
		}
	}
	return string(out)
}

// Settings is the single process-wide settings record. It is lazily created
// with defaults on first read and only ever overwritten, never deleted.
type Settings struct {
	DefaultService      string `json:"defaultService"`
	DefaultVariantCount int    `json:"defaultVariantCount"`

	// Optional Google export credentials, consumed by the excluded export
	// collaborators. Stored here so the settings file carries everything a
	// single local user configures.
	GoogleClientID     string `json:"googleClientId,omitempty"`
	GoogleClientSecret string `json:"googleClientSecret,omitempty"`
	GoogleRefreshToken string `json:"googleRefreshToken,omitempty"`
	GoogleEmail        string `json:"googleEmail,omitempty"`
}

// DefaultSettings returns the settings used when no settings file exists yet.
func DefaultSettings() *Settings {
	return &Settings{
		DefaultService:      "gemini",
		DefaultVariantCount: 3,
	}
}
