package generate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/deckforge/deckforge/internal/jobs"
	"github.com/deckforge/deckforge/internal/store"
)

// StartBulk kicks off a fire-and-forget bulk generation job over a deck and
// returns its job id immediately. The job iterates target slides
// sequentially to respect provider rate limits; each slide still fans out
// its own variant count in parallel.
//
// generate-all targets every slide that can carry images; generate-missing
// additionally skips slides that already have at least one image.
func (s *Service) StartBulk(ctx context.Context, deckID string, jobType jobs.Type, count int, serviceName string) (string, error) {
	if count < 1 || count > MaxVariants {
		return "", &store.ValidationError{Msg: fmt.Sprintf("variant count must be between 1 and %d", MaxVariants)}
	}

	slides, err := s.store.ListSlides(deckID)
	if err != nil {
		return "", err
	}

	var targets []*store.Slide
	for _, slide := range slides {
		if slide.NoImages {
			continue
		}
		if jobType == jobs.TypeGenerateMissing && len(slide.Images) > 0 {
			continue
		}
		targets = append(targets, slide)
	}

	jobID := s.jobs.Create(deckID, jobType, len(targets))
	log.Info().
		Str("job", jobID).
		Str("deck", deckID).
		Str("type", string(jobType)).
		Int("slides", len(targets)).
		Msg("Bulk generation started")

	// The job outlives the request that started it, so it runs on a fresh
	// context rather than the request's.
	go s.runBulk(context.Background(), jobID, deckID, targets, count, serviceName)

	return jobID, nil
}

func (s *Service) runBulk(ctx context.Context, jobID, deckID string, targets []*store.Slide, count int, serviceName string) {
	anySuccess := false

	for _, slide := range targets {
		result, err := s.Generate(ctx, deckID, slide.ID, count, serviceName)

		slideResult := jobs.SlideResult{SlideID: slide.ID}
		switch {
		case err != nil:
			slideResult.Error = err.Error()
			slideResult.Failed = count
		default:
			slideResult.Generated = len(result.Images)
			slideResult.Failed = len(result.Failed)
			if len(result.Images) > 0 {
				anySuccess = true
			}
		}

		failed := err != nil || len(result.Images) == 0
		s.jobs.Update(jobID, func(j *jobs.Job) {
			j.Results = append(j.Results, slideResult)
			j.Progress.Pending--
			if failed {
				j.Progress.Failed++
			} else {
				j.Progress.Completed++
			}
		})
	}

	status := jobs.StatusCompleted
	if !anySuccess && len(targets) > 0 {
		status = jobs.StatusFailed
	}
	s.jobs.Update(jobID, func(j *jobs.Job) {
		j.Status = status
	})

	log.Info().Str("job", jobID).Str("status", string(status)).Msg("Bulk generation finished")
}

// JobStatus returns a snapshot of a bulk job, or nil when the id is unknown
// or the job has been swept.
func (s *Service) JobStatus(jobID string) *jobs.Job {
	return s.jobs.Get(jobID)
}
