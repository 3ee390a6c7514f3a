// Package retry provides a small bounded-retry policy with pluggable delays,
// so call sites (gateway status fetch, voucher claim) can carry their own
// attempt counts and tests can substitute zero-delay policies.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy bounds an operation to MaxAttempts tries. Delay receives the
// 1-based attempt that just failed and returns how long to wait before the
// next one; a nil Delay means no waiting.
type Policy struct {
	MaxAttempts int
	Delay       func(attempt int) time.Duration
}

// Fixed waits the same duration between every attempt.
func Fixed(maxAttempts int, delay time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Delay: func(int) time.Duration {
			return delay
		},
	}
}

// Linear waits attempt*step, so attempt 1 waits step, attempt 2 waits
// 2*step, and so on.
func Linear(maxAttempts int, step time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Delay: func(attempt int) time.Duration {
			return time.Duration(attempt) * step
		},
	}
}

// None performs every attempt back to back. Intended for tests.
func None(maxAttempts int) Policy {
	return Policy{MaxAttempts: maxAttempts}
}

type abortError struct {
	err error
}

func (e abortError) Error() string { return e.err.Error() }

func (e abortError) Unwrap() error { return e.err }

// Abort marks an error as terminal: Run stops immediately and returns the
// wrapped error instead of spending the remaining attempts.
func Abort(err error) error {
	return abortError{err: err}
}

// Run invokes op until it returns nil, attempts are exhausted, or the context
// ends. The returned error is the one from the last attempt.
func (p Policy) Run(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}

		var abort abortError
		if errors.As(err, &abort) {
			return abort.err
		}

		if attempt == attempts {
			break
		}
		if waitErr := p.wait(ctx, attempt); waitErr != nil {
			return err
		}
	}
	return err
}

func (p Policy) wait(ctx context.Context, attempt int) error {
	if p.Delay == nil {
		return ctx.Err()
	}
	delay := p.Delay(attempt)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
