package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// AddGeneratedImage writes image data into the slide directory under the next
// image-NNN.jpg filename and appends its metadata record to the slide. The
// first image on a slide is pinned automatically.
func (s *Store) AddGeneratedImage(deckID, slideID string, data []byte, service, prompt, sourceImageID string) (*GeneratedImage, error) {
	slide, err := s.GetSlide(deckID, slideID)
	if err != nil {
		return nil, err
	}

	seq := 0
	for _, img := range slide.Images {
		var n int
		if _, err := fmt.Sscanf(img.ID, "image-%d", &n); err == nil && n > seq {
			seq = n
		}
	}
	// Leftover files from deleted metadata also advance the sequence so a
	// filename is never reused.
	if entries, err := os.ReadDir(s.slideDir(deckID, slideID)); err == nil {
		for _, e := range entries {
			var n int
			if _, err := fmt.Sscanf(e.Name(), "image-%d.jpg", &n); err == nil && n > seq {
				seq = n
			}
		}
	}

	img := GeneratedImage{
		ID:            fmt.Sprintf("image-%03d", seq+1),
		Filename:      fmt.Sprintf("image-%03d.jpg", seq+1),
		CreatedAt:     time.Now().UTC(),
		Service:       service,
		Prompt:        prompt,
		SourceImageID: sourceImageID,
		IsPinned:      len(slide.Images) == 0,
	}

	if err := os.WriteFile(filepath.Join(s.slideDir(deckID, slideID), img.Filename), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}

	slide.Images = append(slide.Images, img)
	if err := writeAtomic(s.slidePath(deckID, slideID), slide, 0o644); err != nil {
		// Metadata write failed after the image file landed. Remove the file
		// so the slide directory matches the record the reader will see.
		os.Remove(filepath.Join(s.slideDir(deckID, slideID), img.Filename))
		return nil, err
	}

	log.Info().
		Str("deck", deckID).
		Str("slide", slideID).
		Str("image", img.ID).
		Bool("pinned", img.IsPinned).
		Msg("Generated image stored")
	return &img, nil
}

// PinImage marks one image as the slide's chosen variant and unpins the rest.
func (s *Store) PinImage(deckID, slideID, imageID string) (*Slide, error) {
	slide, err := s.GetSlide(deckID, slideID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range slide.Images {
		pinned := slide.Images[i].ID == imageID
		slide.Images[i].IsPinned = pinned
		if pinned {
			found = true
		}
	}
	if !found {
		return nil, notFoundf("image %s on slide %s", imageID, slideID)
	}

	if err := writeAtomic(s.slidePath(deckID, slideID), slide, 0o644); err != nil {
		return nil, err
	}
	return slide, nil
}

// DeleteImage removes an image's metadata and backing file. Deleting the
// pinned image promotes the first remaining image, if any, to pinned.
func (s *Store) DeleteImage(deckID, slideID, imageID string) (*Slide, error) {
	slide, err := s.GetSlide(deckID, slideID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, img := range slide.Images {
		if img.ID == imageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, notFoundf("image %s on slide %s", imageID, slideID)
	}

	removed := slide.Images[idx]
	slide.Images = append(slide.Images[:idx], slide.Images[idx+1:]...)
	if removed.IsPinned && len(slide.Images) > 0 {
		slide.Images[0].IsPinned = true
	}

	if err := writeAtomic(s.slidePath(deckID, slideID), slide, 0o644); err != nil {
		return nil, err
	}
	if err := os.Remove(filepath.Join(s.slideDir(deckID, slideID), removed.Filename)); err != nil {
		log.Warn().Err(err).Str("file", removed.Filename).Msg("Failed to remove image file")
	}

	log.Info().Str("deck", deckID).Str("slide", slideID).Str("image", imageID).Msg("Image deleted")
	return slide, nil
}

// ImagePath returns the on-disk path of a generated image file.
func (s *Store) ImagePath(deckID, slideID, filename string) string {
	return filepath.Join(s.slideDir(deckID, slideID), filename)
}

// ReadImage returns the raw bytes of a generated image by id.
func (s *Store) ReadImage(deckID, slideID, imageID string) ([]byte, *GeneratedImage, error) {
	slide, err := s.GetSlide(deckID, slideID)
	if err != nil {
		return nil, nil, err
	}
	for _, img := range slide.Images {
		if img.ID == imageID {
			data, err := os.ReadFile(s.ImagePath(deckID, slideID, img.Filename))
			if err != nil {
				return nil, nil, fmt.Errorf("failed to read image file %s: %w", img.Filename, err)
			}
			return data, &img, nil
		}
	}
	return nil, nil, notFoundf("image %s on slide %s", imageID, slideID)
}
