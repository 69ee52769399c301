package main

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *server) handleListDeckEntities(w http.ResponseWriter, r *http.Request) {
	deck, err := s.store.GetDeck(mux.Vars(r)["deckID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, deck.Entities)
}

func (s *server) handleAddDeckEntity(w http.ResponseWriter, r *http.Request) {
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
	entity, err := s.store.AddDeckEntity(mux.Vars(r)["deckID"], req.Name, data, ext)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entity)
}

func (s *server) handleRemoveDeckEntity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.store.RemoveDeckEntity(vars["deckID"], vars["name"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *server) handleListGlobalEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := s.store.GlobalEntities()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entities)
}

func (s *server) handleAddGlobalEntity(w http.ResponseWriter, r *http.Request) {
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
	entity, err := s.store.AddGlobalEntity(req.Name, data, ext)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entity)
}

func (s *server) handleRemoveGlobalEntity(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveGlobalEntity(mux.Vars(r)["name"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
