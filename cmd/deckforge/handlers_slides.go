package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/deckforge/deckforge/internal/store"
)

func (s *server) handleListSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := s.store.ListSlides(mux.Vars(r)["deckID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slides)
}

func (s *server) handleCreateSlide(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SpeakerNotes        string `json:"speakerNotes"`
		ImageDescription    string `json:"imageDescription"`
		OverrideVisualStyle string `json:"overrideVisualStyle"`
		NoImages            bool   `json:"noImages"`
		SceneStart          bool   `json:"sceneStart"`
		SceneVisualStyle    string `json:"sceneVisualStyle"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	slide, err := s.store.CreateSlide(mux.Vars(r)["deckID"], store.CreateSlideParams{
		SpeakerNotes:        req.SpeakerNotes,
		ImageDescription:    req.ImageDescription,
		OverrideVisualStyle: req.OverrideVisualStyle,
		NoImages:            req.NoImages,
		SceneStart:          req.SceneStart,
		SceneVisualStyle:    req.SceneVisualStyle,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, slide)
}

func (s *server) handleGetSlide(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slide, err := s.store.GetSlide(vars["deckID"], vars["slideID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slide)
}

func (s *server) handleUpdateSlide(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req struct {
		SpeakerNotes        *string `json:"speakerNotes"`
		ImageDescription    *string `json:"imageDescription"`
		OverrideVisualStyle *string `json:"overrideVisualStyle"`
		NoImages            *bool   `json:"noImages"`
		SceneStart          *bool   `json:"sceneStart"`
		SceneVisualStyle    *string `json:"sceneVisualStyle"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	slide, err := s.store.UpdateSlide(vars["deckID"], vars["slideID"], store.SlideUpdate{
		SpeakerNotes:        req.SpeakerNotes,
		ImageDescription:    req.ImageDescription,
		OverrideVisualStyle: req.OverrideVisualStyle,
		NoImages:            req.NoImages,
		SceneStart:          req.SceneStart,
		SceneVisualStyle:    req.SceneVisualStyle,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slide)
}

func (s *server) handleDeleteSlide(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.store.DeleteSlide(vars["deckID"], vars["slideID"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *server) handleReorderSlides(w http.ResponseWriter, r *http.Request) {
	deckID := mux.Vars(r)["deckID"]
	var req struct {
		Order []string `json:"order"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := s.store.ReorderSlides(deckID, req.Order); err != nil {
		respondError(w, err)
		return
	}
	slides, err := s.store.ListSlides(deckID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slides)
}

func (s *server) handleEffectiveStyle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	style, err := s.store.EffectiveVisualStyle(vars["deckID"], vars["slideID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"visualStyle": style})
}
