package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/deckforge/deckforge/internal/export"
	"github.com/deckforge/deckforge/internal/store"
)

func (s *server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.store.ListDecks()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, decks)
}

func (s *server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		VisualStyle string `json:"visualStyle"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	deck, err := s.store.CreateDeck(req.Name, req.VisualStyle)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, deck)
}

func (s *server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := s.store.GetDeck(mux.Vars(r)["deckID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, deck)
}

func (s *server) handleUpdateDeck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string `json:"name"`
		VisualStyle *string `json:"visualStyle"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	deck, err := s.store.UpdateDeck(mux.Vars(r)["deckID"], store.DeckUpdate{
		Name:        req.Name,
		VisualStyle: req.VisualStyle,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, deck)
}

func (s *server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDeck(mux.Vars(r)["deckID"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *server) handleExportDeck(w http.ResponseWriter, r *http.Request) {
	deckID := mux.Vars(r)["deckID"]
	deck, err := s.store.GetDeck(deckID)
	if err != nil {
		respondError(w, err)
		return
	}

	filename := strings.ReplaceAll(deck.Name, " ", "-") + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.DeckBundle(s.store, deckID, w); err != nil {
		// Headers are already out; all we can do is log.
		log.Error().Err(err).Str("deckId", deckID).Msg("Failed to stream deck bundle")
	}
}

// imageUpload is the shared body shape for theme and entity image uploads.
type imageUpload struct {
	Name        string `json:"name,omitempty"`
	ImageBase64 string `json:"imageBase64"`
	Ext         string `json:"ext"`
}

func (u imageUpload) decode() ([]byte, string, error) {
	data, err := base64.StdEncoding.DecodeString(u.ImageBase64)
	if err != nil {
		return nil, "", &store.ValidationError{Msg: "imageBase64 is not valid base64"}
	}
	if len(data) == 0 {
		return nil, "", &store.ValidationError{Msg: "image data is empty"}
	}
	ext := strings.TrimPrefix(strings.ToLower(u.Ext), ".")
	switch ext {
	case "jpg", "jpeg", "png":
	case "":
		ext = "jpg"
	default:
		return nil, "", &store.ValidationError{Msg: "unsupported image extension: " + ext}
	}
	return data, ext, nil
}

func (s *server) handleAddThemeImage(w http.ResponseWriter, r *http.Request) {
	var req imageUpload
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	data, ext, err := req.decode()
	if err != nil {
		respondError(w, err)
		return
	}
	deck, err := s.store.AddThemeImage(mux.Vars(r)["deckID"], data, ext)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, deck)
}

func (s *server) handleRemoveThemeImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deck, err := s.store.RemoveThemeImage(vars["deckID"], vars["name"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, deck)
}
