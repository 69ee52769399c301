// Package config resolves the process configuration from the environment.
// A .env file in the working directory is honored for local development;
// real environment variables always win over .env entries.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultConcurrency caps simultaneous in-flight generation calls. Sized to
// stay under typical provider rate limits.
const DefaultConcurrency = 5

// Config holds the environment-derived inputs the core depends on.
type Config struct {
	// Root is the storage root directory for all deck data.
	Root string
	// Concurrency is the bound on simultaneous external generation calls.
	Concurrency int
	// GeminiAPIKey authenticates the Gemini provider client.
	GeminiAPIKey string
}

// Load reads configuration from the environment, applying defaults.
// The storage root defaults to ~/.deckforge/decks and is created if missing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env file")
	}

	root := os.Getenv("DECKFORGE_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		root = filepath.Join(home, ".deckforge", "decks")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}

	concurrency := DefaultConcurrency
	if v := os.Getenv("DECKFORGE_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid DECKFORGE_CONCURRENCY %q", v)
		}
		concurrency = n
	}

	return &Config{
		Root:         root,
		Concurrency:  concurrency,
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}, nil
}
