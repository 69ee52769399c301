package jobs

import (
	"testing"
	"time"
)

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry(0)

	id := r.Create("deck1", TypeGenerateAll, 4)
	if id == "" {
		t.Fatal("Expected non-empty job id")
	}

	job := r.Get(id)
	if job == nil {
		t.Fatal("Expected job to be readable")
	}
	if job.Status != StatusRunning {
		t.Errorf("Expected running status, got %s", job.Status)
	}
	if job.Progress.Total != 4 || job.Progress.Pending != 4 {
		t.Errorf("Unexpected initial progress: %+v", job.Progress)
	}

	if r.Get("job-unknown") != nil {
		t.Error("Expected nil for unknown job")
	}
}

func TestRegistryUpdate(t *testing.T) {
	r := NewRegistry(0)
	id := r.Create("deck1", TypeGenerateMissing, 2)

	r.Update(id, func(j *Job) {
		j.Progress.Completed = 1
		j.Progress.Pending = 1
		j.Results = append(j.Results, SlideResult{SlideID: "slide-001", Generated: 3})
	})

	job := r.Get(id)
	if job.Progress.Completed != 1 {
		t.Errorf("Expected completed=1, got %d", job.Progress.Completed)
	}
	if len(job.Results) != 1 || job.Results[0].SlideID != "slide-001" {
		t.Errorf("Unexpected results: %+v", job.Results)
	}

	// Updating a swept or unknown id is a no-op, not a panic.
	r.Update("job-unknown", func(j *Job) { j.Status = StatusFailed })
}

func TestRegistryGetReturnsSnapshot(t *testing.T) {
	r := NewRegistry(0)
	id := r.Create("deck1", TypeGenerateAll, 1)
	r.Update(id, func(j *Job) {
		j.Results = append(j.Results, SlideResult{SlideID: "slide-001"})
	})

	snapshot := r.Get(id)
	snapshot.Status = StatusFailed
	snapshot.Results[0].SlideID = "mutated"

	fresh := r.Get(id)
	if fresh.Status != StatusRunning {
		t.Error("Mutating a snapshot must not affect the stored job")
	}
	if fresh.Results[0].SlideID != "slide-001" {
		t.Error("Mutating a snapshot's results must not affect the stored job")
	}
}

func TestRegistrySweepEvictsByAge(t *testing.T) {
	r := NewRegistry(time.Hour)
	oldID := r.Create("deck1", TypeGenerateAll, 1)
	newID := r.Create("deck2", TypeGenerateAll, 1)

	// Backdate one job past the retention window. Running status does not
	// protect it.
	r.Update(oldID, func(j *Job) {
		j.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	})

	if removed := r.Sweep(); removed != 1 {
		t.Fatalf("Expected 1 job swept, got %d", removed)
	}
	if r.Get(oldID) != nil {
		t.Error("Expected expired job to be gone")
	}
	if r.Get(newID) == nil {
		t.Error("Expected fresh job to survive the sweep")
	}
}
