package llm

import (
	"context"
	"errors"
	"math"
	"time"
)

type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// Permanent marks an error that must not be retried
func Permanent(err error) error { return permanentError{err: err} }

// RetryPolicy retries with exponential backoff clamped to [Min, Max]
type RetryPolicy struct {
	Attempts int
	Min      time.Duration
	Max      time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy waits 4s, 8s, 10s... between attempts
func DefaultRetryPolicy(attempts int) RetryPolicy {
	if attempts < 1 {
		attempts = 1
	}
	return RetryPolicy{Attempts: attempts, Min: 4 * time.Second, Max: 10 * time.Second}
}

// Backoff returns the wait after the given 1-based failed attempt
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	if d < p.Min {
		d = p.Min
	}
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	return d
}

func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var err error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == p.Attempts {
			break
		}
		if serr := sleep(ctx, p.Backoff(attempt)); serr != nil {
			return serr
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
