// Package store is the file-backed persistence layer for decks, slides,
// entities and settings. It is the sole reader and writer of on-disk state.
//
// Every record lives in its own JSON file under a directory-per-entity
// layout rooted at a single storage directory:
//
//	{root}/deck-{deckId}/deck.json
//	{root}/deck-{deckId}/entities/{name}.{ext}
//	{root}/deck-{deckId}/theme/theme-{uuid}.{ext}
//	{root}/deck-{deckId}/{slideId}/slide.json
//	{root}/deck-{deckId}/{slideId}/image-{NNN}.jpg
//	{root}/global-entities/entities.json
//	{root}/settings.json
//
// All mutations go through an atomic write-to-temp-then-rename primitive, so
// a reader never observes a half-written record. There is no locking between
// readers and writers: a reader sees either the pre- or post-update state.
// Concurrent writers to the same record are last-writer-wins.
package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"time"
)

// Store reads and writes all persistent deck state under a root directory.
type Store struct {
	root string
}

// New creates a Store rooted at the given directory. The directory must
// already exist.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) deckDir(deckID string) string {
	return filepath.Join(s.root, "deck-"+deckID)
}

func (s *Store) deckPath(deckID string) string {
	return filepath.Join(s.deckDir(deckID), "deck.json")
}

func (s *Store) slideDir(deckID, slideID string) string {
	return filepath.Join(s.deckDir(deckID), slideID)
}

func (s *Store) slidePath(deckID, slideID string) string {
	return filepath.Join(s.slideDir(deckID, slideID), "slide.json")
}

func (s *Store) globalEntitiesDir() string {
	return filepath.Join(s.root, "global-entities")
}

func (s *Store) globalEntitiesPath() string {
	return filepath.Join(s.globalEntitiesDir(), "entities.json")
}

func (s *Store) settingsPath() string {
	return filepath.Join(s.root, "settings.json")
}

// entityNamePattern constrains entity names to alphanumeric runs joined by
// single internal hyphens, matching the @Name token syntax used in prompts.
var entityNamePattern = regexp.MustCompile(`^[A-Za-z0-9]+(?:-[A-Za-z0-9]+)*$`)

// ValidEntityName reports whether name is usable as an @Name prompt token.
func ValidEntityName(name string) bool {
	return entityNamePattern.MatchString(name)
}

// newID generates a short random hex identifier for decks.
func newID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failure means the platform RNG is broken; fall back to
		// a timestamp so deck creation still works.
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
