package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/deckforge/deckforge/internal/provider"
	"github.com/deckforge/deckforge/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Error().Err(err).Msg("Failed to encode response")
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps internal error types onto HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	var vErr *store.ValidationError
	var pErr *provider.Error

	switch {
	case errors.Is(err, store.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &vErr):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &pErr):
		status := http.StatusBadGateway
		switch pErr.Kind {
		case provider.KindRateLimited:
			status = http.StatusTooManyRequests
		case provider.KindInvalidCredentials:
			status = http.StatusUnauthorized
		case provider.KindContentPolicy:
			status = http.StatusUnprocessableEntity
		}
		respondJSON(w, status, errorResponse{Error: err.Error()})
	default:
		log.Error().Err(err).Msg("Internal error")
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return &store.ValidationError{Msg: "invalid request body: " + err.Error()}
	}
	return nil
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
