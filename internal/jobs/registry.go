package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store is the job-store abstraction injected into the orchestrator: any
// keyed store with TTL eviction satisfies it.
type Store interface {
	// Create registers a new running job and returns its id.
	Create(deckID string, jobType Type, total int) string
	// Update applies fn to the job under the store's lock. Missing ids are a
	// no-op: the job may already have been swept.
	Update(id string, fn func(*Job))
	// Get returns a snapshot of the job, or nil when unknown or swept.
	Get(id string) *Job
	// Sweep evicts jobs older than the retention window and reports how many
	// were removed.
	Sweep() int
}

// DefaultTTL is how long a finished or abandoned job stays readable.
const DefaultTTL = 30 * time.Minute

// Registry is the in-memory Store implementation.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

// NewRegistry creates a Registry with the given retention window. A zero ttl
// uses DefaultTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

// Create registers a new running job.
func (r *Registry) Create(deckID string, jobType Type, total int) string {
	now := time.Now().UTC()
	job := &Job{
		ID:     GenerateID("job-"),
		DeckID: deckID,
		Type:   jobType,
		Status: StatusRunning,
		Progress: Progress{
			Total:   total,
			Pending: total,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()
	return job.ID
}

// Update applies fn to a job under the lock.
func (r *Registry) Update(id string, fn func(*Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return
	}
	fn(job)
	job.UpdatedAt = time.Now().UTC()
}

// Get returns a copy of the job so callers can read it without holding the
// lock. Returns nil when the job is unknown or already swept.
func (r *Registry) Get(id string) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil
	}
	snapshot := *job
	snapshot.Results = append([]SlideResult(nil), job.Results...)
	return &snapshot
}

// Sweep evicts every job created longer ago than the retention window,
// regardless of status. A running job past the window is abandoned.
func (r *Registry) Sweep() int {
	cutoff := time.Now().UTC().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, job := range r.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps at the given interval until ctx is cancelled.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("Swept expired jobs")
			}
		}
	}
}
