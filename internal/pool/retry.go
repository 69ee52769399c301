package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// retryable is implemented by errors that know whether a retry can succeed.
// Terminal provider failures (bad credentials, content-policy rejection,
// not found) report false and propagate on first occurrence: retrying them
// wastes quota and cannot succeed.
type retryable interface {
	Retryable() bool
}

// IsRetryable reports whether err may succeed on retry. Errors that do not
// classify themselves are treated as transient.
func IsRetryable(err error) bool {
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return true
}

// RetryWithBackoff calls fn up to maxRetries+1 times, doubling the delay
// between attempts starting from initialDelay. Non-retryable errors and
// context cancellation stop immediately.
func RetryWithBackoff[T any](ctx context.Context, fn func(ctx context.Context) (T, error), maxRetries int, initialDelay time.Duration) (T, error) {
	var zero T
	delay := initialDelay

	for attempt := 0; ; attempt++ {
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		if !IsRetryable(err) {
			return zero, err
		}
		if attempt >= maxRetries {
			return zero, fmt.Errorf("failed after %d attempts: %w", attempt+1, err)
		}

		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Transient failure, retrying")

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
