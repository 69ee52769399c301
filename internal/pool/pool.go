// Package pool runs independent tasks with bounded parallelism and retries
// transient failures with exponential backoff. Results come back in task
// order, never completion order, so callers can zip them against request
// indices.
package pool

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// Task produces one value. Tasks must be safe to run concurrently with each
// other.
type Task[T any] func(ctx context.Context) (T, error)

// Result is the outcome of one task. Err is nil on success.
type Result[T any] struct {
	Value T
	Err   error
}

// ExecuteInParallel runs every task under a semaphore of size concurrency.
// A task's error (or panic) becomes a failed Result instead of aborting its
// siblings. The returned slice is index-aligned to tasks.
func ExecuteInParallel[T any](ctx context.Context, tasks []Task[T], concurrency int) []Result[T] {
	if concurrency < 1 {
		concurrency = 1
	}

	sem := semaphore.NewWeighted(int64(concurrency))
	results := make([]Result[T], len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled while waiting for a slot; everything not yet
			// started fails with the context error.
			results[i] = Result[T]{Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = runIsolated(ctx, task)
		}(i, task)
	}

	wg.Wait()
	return results
}

// runIsolated converts a panic inside a task into a failed result.
func runIsolated[T any](ctx context.Context, task Task[T]) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Task panicked")
			res = Result[T]{Err: fmt.Errorf("task panicked: %v", r)}
		}
	}()
	value, err := task(ctx)
	return Result[T]{Value: value, Err: err}
}
