package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks an error as transient. Retry re-attempts an
// operation only when it fails with a RetryableError; anything else is
// treated as permanent and returned as-is.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn until it succeeds, fails permanently, or attempts are
// exhausted. The wait between attempts starts at delay and doubles each
// time. Cancelling ctx aborts the wait and returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if attempt == attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// RetryWithBackoff runs fn with the default policy of 3 attempts starting
// at a 1 second delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}
