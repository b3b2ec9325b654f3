package source

import (
	"context"
	"time"
)

// RetryPolicy is the "attempt N times with backoff, then give up" applied
// to per-field extraction and page fetches. Giving up is not an error at
// the accumulation layer; the caller simply offers nothing for that
// attempt.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetry covers the flaky-markup case: three tries, half a second
// apart.
var DefaultRetry = RetryPolicy{Attempts: 3, Backoff: 500 * time.Millisecond}

// Do runs op until it succeeds, attempts are exhausted or the context is
// canceled. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = op(); err == nil {
			return nil
		}
		if i < attempts-1 && p.Backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Backoff):
			}
		}
	}
	return err
}
