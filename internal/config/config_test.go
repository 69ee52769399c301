package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromEnvironment(t *testing.T) {
	root := filepath.Join(t.TempDir(), "decks")
	t.Setenv("DECKFORGE_ROOT", root)
	t.Setenv("DECKFORGE_CONCURRENCY", "3")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Root != root {
		t.Errorf("Expected root %q, got %q", root, cfg.Root)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Expected concurrency 3, got %d", cfg.Concurrency)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("Expected API key from environment, got %q", cfg.GeminiAPIKey)
	}

	// The storage root is created when missing.
	if _, err := os.Stat(root); err != nil {
		t.Errorf("Expected storage root to exist: %v", err)
	}
}

func TestLoadDefaultConcurrency(t *testing.T) {
	t.Setenv("DECKFORGE_ROOT", t.TempDir())
	t.Setenv("DECKFORGE_CONCURRENCY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("Expected default concurrency %d, got %d", DefaultConcurrency, cfg.Concurrency)
	}
}

func TestLoadRejectsBadConcurrency(t *testing.T) {
	t.Setenv("DECKFORGE_ROOT", t.TempDir())

	for _, v := range []string{"zero", "0", "-1"} {
		t.Setenv("DECKFORGE_CONCURRENCY", v)
		if _, err := Load(); err == nil {
			t.Errorf("Expected error for DECKFORGE_CONCURRENCY=%q", v)
		}
	}
}
