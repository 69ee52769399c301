package main

import (
	"net/http"

	"github.com/deckforge/deckforge/internal/store"
)

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetSettings()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (s *server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req store.Settings
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := s.store.UpdateSettings(&req); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, &req)
}
