package store

import (
	"errors"
	"os"
	"testing"
)

func TestGetSettingsDefaultsWithoutFile(t *testing.T) {
	s := newTestStore(t)

	settings, err := s.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.DefaultService != "gemini" {
		t.Errorf("Expected default service gemini, got %q", settings.DefaultService)
	}
	if settings.DefaultVariantCount != 3 {
		t.Errorf("Expected default variant count 3, got %d", settings.DefaultVariantCount)
	}

	// Reading defaults must not create the file.
	if _, err := os.Stat(s.settingsPath()); !os.IsNotExist(err) {
		t.Error("GetSettings must not create the settings file")
	}
}

func TestUpdateSettingsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpdateSettings(&Settings{DefaultService: "gemini", DefaultVariantCount: 5}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	settings, err := s.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.DefaultVariantCount != 5 {
		t.Errorf("Expected variant count 5, got %d", settings.DefaultVariantCount)
	}

	info, err := os.Stat(s.settingsPath())
	if err != nil {
		t.Fatalf("Failed to stat settings file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected owner-only file mode, got %v", info.Mode().Perm())
	}
}

func TestUpdateSettingsRejectsZeroVariants(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateSettings(&Settings{DefaultService: "gemini", DefaultVariantCount: 0})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}
