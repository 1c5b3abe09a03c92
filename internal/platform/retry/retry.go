// Package retry provides bounded retries with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	// Clock drives the backoff waits. Nil means the real clock.
	Clock clockwork.Clock
	// OnRetry is called before each backoff wait.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

type Operation[T any] func() (T, error)
type VoidOperation func() error

// Do runs op up to MaxAttempts times, doubling the backoff after each
// failure. A PermanentError aborts immediately without further attempts.
func Do[T any](ctx context.Context, p Policy, op Operation[T]) (T, error) {
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	backoff := p.InitialBackoff

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		val, err := op()
		if err == nil {
			return val, nil
		}

		var perm *PermanentError
		if errors.As(err, &perm) {
			var zero T
			return zero, err
		}

		if attempt == p.MaxAttempts {
			var zero T
			return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		timer := clock.NewTimer(backoff)
		select {
		case <-timer.Chan():
			backoff *= 2
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}

	panic("unreachable: MaxAttempts must be >= 1")
}

// DoVoid is Do for operations without a result value.
func DoVoid(ctx context.Context, p Policy, op VoidOperation) error {
	_, err := Do(ctx, p, func() (struct{}, error) { return struct{}{}, op() })
	return err
}

// PermanentError marks an error as not worth retrying.
type PermanentError struct {
	Err error
}

// Permanent wraps err so Do aborts without retrying.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
