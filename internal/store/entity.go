package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// AddDeckEntity registers a deck-scoped entity backed by one image. Adding an
// image to an existing entity appends it; entity images are append-only.
func (s *Store) AddDeckEntity(deckID, name string, imageData []byte, ext string) (*Entity, error) {
	if !ValidEntityName(name) {
		return nil, validationf("invalid entity name %q: must be alphanumeric with internal hyphens", name)
	}

	deck, err := s.GetDeck(deckID)
	if err != nil {
		return nil, err
	}

	filename, err := s.writeEntityImage(filepath.Join(s.deckDir(deckID), "entities"), name, imageData, ext)
	if err != nil {
		return nil, err
	}

	entity := deck.Entities[name]
	entity.Name = name
	entity.Images = append(entity.Images, filename)
	deck.Entities[name] = entity
	deck.UpdatedAt = time.Now().UTC()

	if err := writeAtomic(s.deckPath(deckID), deck, 0o644); err != nil {
		return nil, err
	}
	log.Info().Str("deck", deckID).Str("entity", name).Msg("Deck entity added")
	return &entity, nil
}

// RemoveDeckEntity deletes a deck-scoped entity and its backing image files.
func (s *Store) RemoveDeckEntity(deckID, name string) error {
	deck, err := s.GetDeck(deckID)
	if err != nil {
		return err
	}
	entity, ok := deck.Entities[name]
	if !ok {
		return notFoundf("entity %s in deck %s", name, deckID)
	}

	delete(deck.Entities, name)
	deck.UpdatedAt = time.Now().UTC()
	if err := writeAtomic(s.deckPath(deckID), deck, 0o644); err != nil {
		return err
	}
	s.removeEntityImages(filepath.Join(s.deckDir(deckID), "entities"), entity)
	return nil
}

// GlobalEntities returns the shared entity map. An absent entities file is an
// empty collection, not an error; the file is created lazily on first add.
func (s *Store) GlobalEntities() (map[string]Entity, error) {
	entities := map[string]Entity{}
	err := readJSON(s.globalEntitiesPath(), &entities)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return entities, nil
}

// AddGlobalEntity registers an entity shared across all decks.
func (s *Store) AddGlobalEntity(name string, imageData []byte, ext string) (*Entity, error) {
	if !ValidEntityName(name) {
		return nil, validationf("invalid entity name %q: must be alphanumeric with internal hyphens", name)
	}

	entities, err := s.GlobalEntities()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.globalEntitiesDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create global entities directory: %w", err)
	}
	filename, err := s.writeEntityImage(s.globalEntitiesDir(), name, imageData, ext)
	if err != nil {
		return nil, err
	}

	entity := entities[name]
	entity.Name = name
	entity.Images = append(entity.Images, filename)
	entities[name] = entity

	if err := writeAtomic(s.globalEntitiesPath(), entities, 0o644); err != nil {
		return nil, err
	}
	log.Info().Str("entity", name).Msg("Global entity added")
	return &entity, nil
}

// RemoveGlobalEntity deletes a shared entity and its backing image files.
func (s *Store) RemoveGlobalEntity(name string) error {
	entities, err := s.GlobalEntities()
	if err != nil {
		return err
	}
	entity, ok := entities[name]
	if !ok {
		return notFoundf("global entity %s", name)
	}

	delete(entities, name)
	if err := writeAtomic(s.globalEntitiesPath(), entities, 0o644); err != nil {
		return err
	}
	s.removeEntityImages(s.globalEntitiesDir(), entity)
	return nil
}

// MergedEntities overlays the deck's entities onto the global map. On a name
// collision the deck-local entity wins.
func (s *Store) MergedEntities(deckID string) (map[string]Entity, error) {
	deck, err := s.GetDeck(deckID)
	if err != nil {
		return nil, err
	}
	global, err := s.GlobalEntities()
	if err != nil {
		return nil, err
	}

	merged := make(map[string]Entity, len(global)+len(deck.Entities))
	for name, e := range global {
		merged[name] = e
	}
	for name, e := range deck.Entities {
		merged[name] = e
	}
	return merged, nil
}

// EntityImagePath resolves an entity image filename to its on-disk path,
// preferring the deck-scoped location when the file exists there.
func (s *Store) EntityImagePath(deckID, filename string) string {
	deckLocal := filepath.Join(s.deckDir(deckID), "entities", filename)
	if _, err := os.Stat(deckLocal); err == nil {
		return deckLocal
	}
	return filepath.Join(s.globalEntitiesDir(), filename)
}

// writeEntityImage stores one entity image as {name}.{ext}, suffixing a
// sequence number when the entity already has images.
func (s *Store) writeEntityImage(dir, name string, data []byte, ext string) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "jpg"
	}
	filename := fmt.Sprintf("%s.%s", name, ext)
	for n := 2; ; n++ {
		if _, err := os.Stat(filepath.Join(dir, filename)); os.IsNotExist(err) {
			break
		}
		filename = fmt.Sprintf("%s-%d.%s", name, n, ext)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write entity image: %w", err)
	}
	return filename, nil
}

func (s *Store) removeEntityImages(dir string, entity Entity) {
	for _, filename := range entity.Images {
		if err := os.Remove(filepath.Join(dir, filename)); err != nil {
			log.Warn().Err(err).Str("file", filename).Msg("Failed to remove entity image file")
		}
	}
}
