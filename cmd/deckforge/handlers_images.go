package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/deckforge/deckforge/internal/store"
)

// defaultVariantCount resolves a request count of zero against settings.
func (s *server) defaultVariantCount(count int) int {
	if count != 0 {
		return count
	}
	settings, err := s.store.GetSettings()
	if err != nil {
		return store.DefaultSettings().DefaultVariantCount
	}
	return settings.DefaultVariantCount
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req struct {
		Count   int    `json:"count"`
		Service string `json:"service"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	result, err := s.gen.Generate(r.Context(), vars["deckID"], vars["slideID"], s.defaultVariantCount(req.Count), req.Service)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *server) handleTweak(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req struct {
		Prompt string `json:"prompt"`
		Count  int    `json:"count"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	result, err := s.gen.Tweak(r.Context(), vars["deckID"], vars["slideID"], vars["imageID"], req.Prompt, s.defaultVariantCount(req.Count))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *server) handlePinImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slide, err := s.store.PinImage(vars["deckID"], vars["slideID"], vars["imageID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slide)
}

func (s *server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slide, err := s.store.DeleteImage(vars["deckID"], vars["slideID"], vars["imageID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slide)
}

func (s *server) handleImageFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	data, _, err := s.store.ReadImage(vars["deckID"], vars["slideID"], vars["imageID"])
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
