package retry

import (
	"context"
	"time"

	"github.com/zoobzio/clockz"
)

// Policy describes a bounded exponential backoff: BaseDelay, 2*BaseDelay,
// 4*BaseDelay, ... capped at MaxDelay, for at most MaxAttempts attempts.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable decides whether an error is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(error) bool
	// Clock is injectable for tests; nil means the real clock.
	Clock clockz.Clock
}

// DefaultPolicy matches the retry budget used against the datastore and the
// notification sender.
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Retryable:   retryable,
	}
}

func (p Policy) clock() clockz.Clock {
	if p.Clock != nil {
		return p.Clock
	}
	return clockz.RealClock
}

// Do runs fn until it succeeds, exhausts the attempt budget, hits a
// non-retryable error, or the context is canceled. The last error is returned.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	clock := p.clock()
	delay := p.BaseDelay

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}

		if i < attempts-1 {
			select {
			case <-clock.After(delay):
				delay *= 2
				if p.MaxDelay > 0 && delay > p.MaxDelay {
					delay = p.MaxDelay
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
