package collector

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go"
)

// RetryPolicy is the single retry policy applied to every provider call.
type RetryPolicy struct {
	Attempts uint          // total number of attempts, 1 disables retries
	Delay    time.Duration // base delay, doubled after every failed attempt
	MaxDelay time.Duration // upper bound for a single delay (0 - no bound)
}

// NoRetry is a policy with exactly one attempt.
var NoRetry = RetryPolicy{Attempts: 1}

// DefaultRetryPolicy returns 3 attempts with 1s, 2s delays in between.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 3,
		Delay:    time.Second,
		MaxDelay: 10 * time.Second,
	}
}

// Do runs fn according to the policy. The last error is returned as is.
// onRetry is called with the zero-based attempt number only when another attempt follows.
func (p RetryPolicy) Do(ctx context.Context, fn func() error, onRetry func(n uint, err error)) error {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(p.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
	}
	if p.MaxDelay > 0 {
		opts = append(opts, retry.MaxDelay(p.MaxDelay))
	}
	if onRetry != nil {
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			if n+1 < attempts {
				onRetry(n, err)
			}
		}))
	}

	return retry.Do(fn, opts...)
}

// isRetryable reports whether the error may go away on the next attempt.
// Cancellation of the run context itself is handled by retry.Context.
func isRetryable(err error) bool {
	if errors.Is(err, ErrUnrecoverable) || errors.Is(err, context.Canceled) {
		return false
	}
	return retry.IsRecoverable(err)
}
