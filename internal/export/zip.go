// Package export bundles a deck's content for download: each slide's pinned
// image plus a speaker-notes text file, packed into a zstd-compressed ZIP.
// It is a read-only consumer of the store.
package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/deckforge/deckforge/internal/store"
)

// zipMethodZstd is the ZIP compression method ID for Zstandard (APPNOTE 6.3.7).
const zipMethodZstd uint16 = 93

func init() {
	zip.RegisterCompressor(zipMethodZstd, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	})
}

// DeckBundle writes a ZIP of the deck to w: one pinned image per slide,
// named by slide position, plus a notes.txt with the speaker notes in slide
// order. Slides without a pinned image contribute notes only.
func DeckBundle(s *store.Store, deckID string, w io.Writer) error {
	deck, err := s.GetDeck(deckID)
	if err != nil {
		return err
	}
	slides, err := s.ListSlides(deckID)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	var notes strings.Builder
	imageCount := 0

	for i, slide := range slides {
		fmt.Fprintf(&notes, "--- Slide %d ---\n%s\n\n", i+1, slide.SpeakerNotes)

		pinned := pinnedImage(slide)
		if pinned == nil {
			continue
		}
		data, err := os.ReadFile(s.ImagePath(deckID, slide.ID, pinned.Filename))
		if err != nil {
			log.Warn().Err(err).Str("slide", slide.ID).Msg("Skipping unreadable pinned image in bundle")
			continue
		}

		header := &zip.FileHeader{
			Name:     fmt.Sprintf("slide-%02d.jpg", i+1),
			Method:   zipMethodZstd,
			Modified: time.Now(),
		}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to create ZIP entry: %w", err)
		}
		if _, err := entry.Write(data); err != nil {
			return fmt.Errorf("failed to write ZIP entry: %w", err)
		}
		imageCount++
	}

	notesHeader := &zip.FileHeader{
		Name:     "notes.txt",
		Method:   zipMethodZstd,
		Modified: time.Now(),
	}
	entry, err := zw.CreateHeader(notesHeader)
	if err != nil {
		return fmt.Errorf("failed to create notes entry: %w", err)
	}
	if _, err := io.WriteString(entry, notes.String()); err != nil {
		return fmt.Errorf("failed to write notes: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish ZIP: %w", err)
	}

	log.Info().
		Str("deck", deck.ID).
		Int("slides", len(slides)).
		Int("images", imageCount).
		Msg("Deck bundle exported")
	return nil
}

func pinnedImage(slide *store.Slide) *store.GeneratedImage {
	for i := range slide.Images {
		if slide.Images[i].IsPinned {
			return &slide.Images[i]
		}
	}
	return nil
}
