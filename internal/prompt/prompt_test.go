package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/deckforge/deckforge/internal/store"
)

func entityMap(names ...string) map[string]store.Entity {
	m := make(map[string]store.Entity, len(names))
	for _, n := range names {
		m[n] = store.Entity{Name: n, Images: []string{n + ".jpg"}}
	}
	return m
}

func TestParseEntityReferencesLongestMatch(t *testing.T) {
	entities := entityMap("Bob", "Bob-Jr")

	result := ParseEntityReferences("Hi @Bob and @Bob-Jr", entities)
	if result.Text != "Hi Bob and Bob Jr" {
		t.Errorf("Expected 'Hi Bob and Bob Jr', got %q", result.Text)
	}
	if len(result.Resolved) != 2 {
		t.Fatalf("Expected 2 resolved entities, got %v", result.Resolved)
	}
	if result.Resolved[0] != "Bob" || result.Resolved[1] != "Bob-Jr" {
		t.Errorf("Unexpected resolved order: %v", result.Resolved)
	}
}

func TestParseEntityReferencesCaseInsensitiveFallback(t *testing.T) {
	entities := entityMap("Alice")

	result := ParseEntityReferences("Meet @alice", entities)
	if len(result.Unknown) != 0 {
		t.Errorf("Expected case-insensitive resolution, got unknown %v", result.Unknown)
	}
	if result.Text != "Meet Alice" {
		t.Errorf("Expected canonical display name, got %q", result.Text)
	}
	if len(result.Resolved) != 1 || result.Resolved[0] != "Alice" {
		t.Errorf("Expected canonical name in resolved list, got %v", result.Resolved)
	}
}

func TestParseEntityReferencesUnknownDeduplicated(t *testing.T) {
	result := ParseEntityReferences("@Ghost waves at @Ghost and @Other", nil)
	if len(result.Unknown) != 2 {
		t.Fatalf("Expected 2 deduplicated unknowns, got %v", result.Unknown)
	}
	if result.Unknown[0] != "Ghost" || result.Unknown[1] != "Other" {
		t.Errorf("Unexpected unknown list: %v", result.Unknown)
	}
	// Unresolved tokens stay verbatim.
	if !strings.Contains(result.Text, "@Ghost") {
		t.Errorf("Unresolved token must be left untouched, got %q", result.Text)
	}
}

func TestParseEntityReferencesResolvedDeduplicated(t *testing.T) {
	entities := entityMap("Bob")

	result := ParseEntityReferences("@Bob meets @Bob", entities)
	if len(result.Resolved) != 1 {
		t.Errorf("Expected 1 deduplicated resolution, got %v", result.Resolved)
	}
	if result.Text != "Bob meets Bob" {
		t.Errorf("Every occurrence must still be replaced, got %q", result.Text)
	}
}

func TestReferencedEntityImages(t *testing.T) {
	entities := entityMap("Bob")
	entities["Imageless"] = store.Entity{Name: "Imageless"}

	refs := ReferencedEntityImages("@Bob and @Imageless", entities)
	if len(refs) != 1 {
		t.Fatalf("Expected 1 reference image, got %d", len(refs))
	}
	if refs[0].Filename != "Bob.jpg" || refs[0].Label != "Bob" {
		t.Errorf("Unexpected reference: %+v", refs[0])
	}
}

func TestBuildFullPromptAssembly(t *testing.T) {
	entities := entityMap("Bob")

	full, parsed, err := BuildFullPrompt("watercolor", "@Bob on a bridge", entities, 2)
	if err != nil {
		t.Fatalf("BuildFullPrompt failed: %v", err)
	}
	if !strings.HasPrefix(full, "watercolor") {
		t.Errorf("Prompt must open with the visual style, got %q", full)
	}
	if !strings.Contains(full, "2 attached theme reference images") {
		t.Error("Expected theme guidance for a deck with theme images")
	}
	if !strings.Contains(full, "Bob on a bridge") {
		t.Error("Expected resolved description in prompt")
	}
	if !strings.HasSuffix(full, "16:9 widescreen aspect ratio.") {
		t.Errorf("Prompt must end with the quality suffix, got %q", full)
	}
	if len(parsed.Resolved) != 1 {
		t.Errorf("Expected parse result to be returned, got %v", parsed.Resolved)
	}
}

func TestBuildFullPromptNoThemeGuidanceWithoutImages(t *testing.T) {
	full, _, err := BuildFullPrompt("watercolor", "a bridge", nil, 0)
	if err != nil {
		t.Fatalf("BuildFullPrompt failed: %v", err)
	}
	if strings.Contains(full, "theme reference images") {
		t.Error("No theme guidance expected without theme images")
	}
}

func TestBuildFullPromptRejectsEmptyInputs(t *testing.T) {
	_, _, err := BuildFullPrompt("  ", "", nil, 0)
	var vErr *store.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError for empty inputs, got %v", err)
	}
}

func TestBuildFullPromptRejectsOversize(t *testing.T) {
	_, _, err := BuildFullPrompt("", strings.Repeat("a", MaxPromptLength+1), nil, 0)
	var vErr *store.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError for oversize prompt, got %v", err)
	}
}
