// Package jobs tracks long-running bulk generation jobs in memory. A job
// outlives the request that started it and is readable by polling until the
// sweeper garbage-collects it after a fixed retention window, regardless of
// completion status.
package jobs

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog/log"
)

// Type identifies what a bulk job does.
type Type string

const (
	TypeGenerateAll     Type = "generate-all"
	TypeGenerateMissing Type = "generate-missing"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Progress counts slides processed so far.
type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
}

// SlideResult logs the outcome for one slide in a bulk job.
type SlideResult struct {
	SlideID   string `json:"slideId"`
	Generated int    `json:"generated"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// Job is one bulk generation run.
type Job struct {
	ID        string        `json:"id"`
	DeckID    string        `json:"deckId"`
	Type      Type          `json:"type"`
	Status    Status        `json:"status"`
	Progress  Progress      `json:"progress"`
	Results   []SlideResult `json:"results,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// GenerateID creates a cryptographically random job ID with the given
// prefix, e.g. "job-". Random ids prevent sequential enumeration.
func GenerateID(prefix string) string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msgf("Failed to generate random %s job ID", prefix)
	}
	return prefix + hex.EncodeToString(b)
}
