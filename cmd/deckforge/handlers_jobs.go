package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/deckforge/deckforge/internal/jobs"
)

type bulkRequest struct {
	Count   int    `json:"count"`
	Service string `json:"service"`
}

func (s *server) startBulk(w http.ResponseWriter, r *http.Request, jobType jobs.Type) {
	var req bulkRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	jobID, err := s.gen.StartBulk(r.Context(), mux.Vars(r)["deckID"], jobType, s.defaultVariantCount(req.Count), req.Service)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID})
}

func (s *server) handleGenerateAll(w http.ResponseWriter, r *http.Request) {
	s.startBulk(w, r, jobs.TypeGenerateAll)
}

func (s *server) handleGenerateMissing(w http.ResponseWriter, r *http.Request) {
	s.startBulk(w, r, jobs.TypeGenerateMissing)
}

func (s *server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.gen.JobStatus(mux.Vars(r)["jobID"])
	if job == nil {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "job not found"})
		return
	}
	respondJSON(w, http.StatusOK, job)
}
