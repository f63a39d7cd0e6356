package retry

import (
	"context"
	"errors"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// Policy retries an operation with exponential backoff. A failed attempt n
// (counting from zero) waits BaseDelay * 2^n before the next one, unless the
// error carries a rate-limit hint, which is used as is.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	onDelay func(d time.Duration)
}

func NewPolicy(maxAttempts int, baseDelay time.Duration) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return Policy{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// Do runs fn until it succeeds, returns a permanent error, the attempts run
// out or ctx is cancelled. The last error is returned.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(
		func() error {
			return fn(ctx)
		},
		retry.Attempts(uint(max(p.MaxAttempts, 1))),
		retry.Delay(p.BaseDelay),
		retry.DelayType(p.delay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}

// Delay is the computed backoff after the given zero-based attempt.
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay << min(attempt, 30)
}

func (p Policy) delay(n uint, err error, config *retry.Config) time.Duration {
	d, limited := RetryAfter(err)
	if !limited || d <= 0 {
		d = retry.BackOffDelay(n, err, config)
	}
	if p.onDelay != nil {
		p.onDelay(d)
	}
	return d
}

type rateLimitedError struct {
	err   error
	after time.Duration
}

func (e *rateLimitedError) Error() string { return e.err.Error() }
func (e *rateLimitedError) Unwrap() error { return e.err }

// RateLimited marks err as a rate-limit response: the next attempt waits
// exactly after instead of the computed backoff.
func RateLimited(err error, after time.Duration) error {
	return &rateLimitedError{err: err, after: after}
}

// RetryAfter returns the rate-limit hint attached to err, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var limited *rateLimitedError
	if errors.As(err, &limited) {
		return limited.after, true
	}
	return 0, false
}

// Permanent stops the retry loop; Do returns the wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return retry.Unrecoverable(err)
}
