package store

import "testing"

// Builds a five-slide deck exercising every branch of style resolution. Only
// preceding scene starts count, so a scene-start slide itself resolves to the
// style active before it:
//
//	0: scene start, scene style "ink wash"     -> deck style
//	1: plain slide                             -> "ink wash"
//	2: override "pixel art"                    -> "pixel art"
//	3: scene start, scene style "oil painting" -> "ink wash"
//	4: plain slide                             -> "oil painting"
func TestEffectiveVisualStyleSceneResolution(t *testing.T) {
	s := newTestStore(t)
	deck := mustCreateDeck(t, s) // deck style "clean flat vector art"

	ids := []string{
		mustCreateSlide(t, s, deck.ID, CreateSlideParams{SceneStart: true, SceneVisualStyle: "ink wash"}).ID,
		mustCreateSlide(t, s, deck.ID, CreateSlideParams{}).ID,
		mustCreateSlide(t, s, deck.ID, CreateSlideParams{OverrideVisualStyle: "pixel art"}).ID,
		mustCreateSlide(t, s, deck.ID, CreateSlideParams{SceneStart: true, SceneVisualStyle: "oil painting"}).ID,
		mustCreateSlide(t, s, deck.ID, CreateSlideParams{}).ID,
	}

	want := []string{"clean flat vector art", "ink wash", "pixel art", "ink wash", "oil painting"}
	for i, id := range ids {
		got, err := s.EffectiveVisualStyle(deck.ID, id)
		if err != nil {
			t.Fatalf("EffectiveVisualStyle(%s) failed: %v", id, err)
		}
		if got != want[i] {
			t.Errorf("Slide %d: expected %q, got %q", i, want[i], got)
		}
	}
}

func TestEffectiveVisualStyleDeckFallback(t *testing.T) {
	s := newTestStore(t)
	deck := mustCreateDeck(t, s)
	slide := mustCreateSlide(t, s, deck.ID, CreateSlideParams{})

	got, err := s.EffectiveVisualStyle(deck.ID, slide.ID)
	if err != nil {
		t.Fatalf("EffectiveVisualStyle failed: %v", err)
	}
	if got != deck.VisualStyle {
		t.Errorf("Expected deck style %q, got %q", deck.VisualStyle, got)
	}
}

func TestEffectiveVisualStyleEmptySceneStyleDoesNotReset(t *testing.T) {
	s := newTestStore(t)
	deck := mustCreateDeck(t, s)

	mustCreateSlide(t, s, deck.ID, CreateSlideParams{SceneStart: true, SceneVisualStyle: "charcoal"})
	mustCreateSlide(t, s, deck.ID, CreateSlideParams{SceneStart: true}) // no style of its own
	last := mustCreateSlide(t, s, deck.ID, CreateSlideParams{})

	got, err := s.EffectiveVisualStyle(deck.ID, last.ID)
	if err != nil {
		t.Fatalf("EffectiveVisualStyle failed: %v", err)
	}
	if got != "charcoal" {
		t.Errorf("A style-less scene start must not reset the active style; got %q", got)
	}
}

func TestEffectiveVisualStyleFollowsReorder(t *testing.T) {
	s := newTestStore(t)
	deck := mustCreateDeck(t, s)

	scene := mustCreateSlide(t, s, deck.ID, CreateSlideParams{SceneStart: true, SceneVisualStyle: "gouache"}).ID
	plain := mustCreateSlide(t, s, deck.ID, CreateSlideParams{}).ID

	// Move the plain slide in front of the scene start: it no longer has a
	// preceding scene, so it falls back to the deck style.
	if err := s.ReorderSlides(deck.ID, []string{plain, scene}); err != nil {
		t.Fatalf("ReorderSlides failed: %v", err)
	}

	got, err := s.EffectiveVisualStyle(deck.ID, plain)
	if err != nil {
		t.Fatalf("EffectiveVisualStyle failed: %v", err)
	}
	if got != deck.VisualStyle {
		t.Errorf("Expected deck style after reorder, got %q", got)
	}
}
