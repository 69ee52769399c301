package store

// EffectiveVisualStyle resolves the style used to generate a slide's image:
// the slide's own override when set, else the style of the nearest preceding
// scene start that carries one, else the deck's style. "Preceding" is by
// order, and a scene's style persists across every following slide until the
// next scene start.
func (s *Store) EffectiveVisualStyle(deckID, slideID string) (string, error) {
	slide, err := s.GetSlide(deckID, slideID)
	if err != nil {
		return "", err
	}
	if slide.OverrideVisualStyle != "" {
		return slide.OverrideVisualStyle, nil
	}

	deck, err := s.GetDeck(deckID)
	if err != nil {
		return "", err
	}
	slides, err := s.ListSlides(deckID)
	if err != nil {
		return "", err
	}

	if style := sceneStyleAt(slides, slide.Order); style != "" {
		return style, nil
	}
	return deck.VisualStyle, nil
}

// sceneStyleAt returns the scene style active at the given order, computed in
// one forward pass over the slides instead of a backward scan per lookup. Only
// preceding slides count: a scene-start slide does not pick up its own style.
// A scene start with an empty sceneVisualStyle does not reset the active style.
func sceneStyleAt(slides []*Slide, order int) string {
	active := ""
	for _, sl := range slidesByOrder(slides) {
		if sl.Order >= order {
			break
		}
		if sl.SceneStart && sl.SceneVisualStyle != "" {
			active = sl.SceneVisualStyle
		}
	}
	return active
}
