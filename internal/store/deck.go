package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CreateDeck allocates an identifier, creates the deck directory with its
// entities subdirectory, and writes the initial record. Creation is
// all-or-nothing: on any failure the whole deck directory is removed.
func (s *Store) CreateDeck(name, visualStyle string) (*Deck, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationf("deck name must not be empty")
	}

	deck := &Deck{
		ID:          newID(),
		Name:        name,
		VisualStyle: visualStyle,
		Entities:    map[string]Entity{},
		SlideIDs:    []string{},
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	dir := s.deckDir(deck.ID)
	if err := os.MkdirAll(filepath.Join(dir, "entities"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create deck directory: %w", err)
	}
	if err := writeAtomic(s.deckPath(deck.ID), deck, 0o644); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	log.Info().Str("deck", deck.ID).Str("name", name).Msg("Deck created")
	return deck, nil
}

// GetDeck reads a deck record by id.
func (s *Store) GetDeck(deckID string) (*Deck, error) {
	var deck Deck
	if err := readJSON(s.deckPath(deckID), &deck); err != nil {
		return nil, err
	}
	if deck.Entities == nil {
		deck.Entities = map[string]Entity{}
	}
	return &deck, nil
}

// ListDecks returns all deck records under the storage root, sorted by
// creation time. Directories without a readable deck.json are skipped with a
// warning rather than failing the whole listing.
func (s *Store) ListDecks() ([]*Deck, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage root: %w", err)
	}

	var decks []*Deck
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "deck-") {
			continue
		}
		deck, err := s.GetDeck(strings.TrimPrefix(e.Name(), "deck-"))
		if err != nil {
			log.Warn().Err(err).Str("dir", e.Name()).Msg("Skipping unreadable deck")
			continue
		}
		decks = append(decks, deck)
	}
	sort.Slice(decks, func(i, j int) bool {
		return decks[i].CreatedAt.Before(decks[j].CreatedAt)
	})
	return decks, nil
}

// DeckUpdate carries optional metadata changes. Nil fields are left unchanged.
type DeckUpdate struct {
	Name        *string
	VisualStyle *string
}

// UpdateDeck applies metadata edits and bumps UpdatedAt.
func (s *Store) UpdateDeck(deckID string, upd DeckUpdate) (*Deck, error) {
	deck, err := s.GetDeck(deckID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return nil, validationf("deck name must not be empty")
		}
		deck.Name = *upd.Name
	}
	if upd.VisualStyle != nil {
		deck.VisualStyle = *upd.VisualStyle
	}
	deck.UpdatedAt = time.Now().UTC()
	if err := writeAtomic(s.deckPath(deckID), deck, 0o644); err != nil {
		return nil, err
	}
	return deck, nil
}

// DeleteDeck removes the deck and everything beneath it: slides, generated
// image files, entity images and theme images.
func (s *Store) DeleteDeck(deckID string) error {
	if _, err := s.GetDeck(deckID); err != nil {
		return err
	}
	if err := os.RemoveAll(s.deckDir(deckID)); err != nil {
		return fmt.Errorf("failed to delete deck %s: %w", deckID, err)
	}
	log.Info().Str("deck", deckID).Msg("Deck deleted")
	return nil
}

// AddThemeImage stores image data as a theme reference for the deck. Theme
// images guide generation toward a consistent look. At most MaxThemeImages
// per deck.
func (s *Store) AddThemeImage(deckID string, data []byte, ext string) (*Deck, error) {
	deck, err := s.GetDeck(deckID)
	if err != nil {
		return nil, err
	}
	if len(deck.ThemeImages) >= MaxThemeImages {
		return nil, validationf("deck already has %d theme images", MaxThemeImages)
	}

	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "jpg"
	}
	name := fmt.Sprintf("theme-%s.%s", uuid.NewString(), ext)

	themeDir := filepath.Join(s.deckDir(deckID), "theme")
	if err := os.MkdirAll(themeDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create theme directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(themeDir, name), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write theme image: %w", err)
	}

	deck.ThemeImages = append(deck.ThemeImages, name)
	deck.UpdatedAt = time.Now().UTC()
	if err := writeAtomic(s.deckPath(deckID), deck, 0o644); err != nil {
		return nil, err
	}
	return deck, nil
}

// RemoveThemeImage deletes a theme image file and drops it from the deck record.
func (s *Store) RemoveThemeImage(deckID, name string) (*Deck, error) {
	deck, err := s.GetDeck(deckID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, n := range deck.ThemeImages {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, notFoundf("theme image %s", name)
	}

	deck.ThemeImages = append(deck.ThemeImages[:idx], deck.ThemeImages[idx+1:]...)
	deck.UpdatedAt = time.Now().UTC()
	if err := writeAtomic(s.deckPath(deckID), deck, 0o644); err != nil {
		return nil, err
	}
	if err := os.Remove(filepath.Join(s.deckDir(deckID), "theme", name)); err != nil {
		log.Warn().Err(err).Str("deck", deckID).Str("theme", name).Msg("Failed to remove theme image file")
	}
	return deck, nil
}

// ThemeImagePath returns the on-disk path of a theme image.
func (s *Store) ThemeImagePath(deckID, name string) string {
	return filepath.Join(s.deckDir(deckID), "theme", name)
}
