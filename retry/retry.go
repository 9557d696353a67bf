/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package retry runs operations again according to a backoff policy.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// IsRetryable defines a func that can tell if error is retryable as opposed to persistent.
type IsRetryable func(error) bool

// RetryableFunc is function that does some work and can be potentially retried.
type RetryableFunc func(ctx context.Context) error

// Notify is called on every retry with the error of the failed try and the delay before the next one.
type Notify = backoff.Notify

// Policy defines backoff strategy.
type Policy interface {
	NewBackOff() backoff.BackOff
}

// DoWithRetry executes fn with retry according to policy p and with respect to context ctx.
// isRetryable selects errors leading to another try (nil means any error).
// notify may be nil.
func DoWithRetry(ctx context.Context, p Policy, isRetryable IsRetryable, notify Notify, fn RetryableFunc) error {
	bctx := backoff.WithContext(p.NewBackOff(), ctx)
	op := func() error {
		err := fn(bctx.Context())
		if err != nil && isRetryable != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.RetryNotify(op, bctx, notify)
}

// CountRetries returns a Notify that increments *retries on every retry before calling next (may be nil).
func CountRetries(retries *int, next Notify) Notify {
	return func(err error, delay time.Duration) {
		*retries++
		if next != nil {
			next(err, delay)
		}
	}
}

// The PolicyFunc type is an adapter to allow the use of ordinary functions as retry.Policy.
type PolicyFunc func() backoff.BackOff

// NewBackOff implements retry.Policy.
func (f PolicyFunc) NewBackOff() backoff.BackOff {
	return f()
}

// NoRetryPolicy makes DoWithRetry call the function exactly once.
var NoRetryPolicy = PolicyFunc(func() backoff.BackOff { return &backoff.StopBackOff{} })

// ExponentialBackoffPolicy means repeat up to max times with exponentially growing delays (1.5 multiplier).
// The total elapsed time is not limited.
type ExponentialBackoffPolicy struct {
	initialInterval time.Duration
	maxAttempts     int
}

// NewExponentialBackoffPolicy returns an exponential backoff policy with given initial interval and max retry attempt count.
func NewExponentialBackoffPolicy(initialInterval time.Duration, maxRetryAttempts int) ExponentialBackoffPolicy {
	return ExponentialBackoffPolicy{initialInterval, maxRetryAttempts}
}

// NewBackOff implements retry.Policy.
func (p ExponentialBackoffPolicy) NewBackOff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.initialInterval
	eb.MaxElapsedTime = 0
	return withMaxRetries(eb, p.maxAttempts)
}

// ConstantBackoffPolicy means repeat up to max times with constant interval delays.
type ConstantBackoffPolicy struct {
	interval    time.Duration
	maxAttempts int
}

// NewConstantBackoffPolicy returns a constant backoff policy with given interval and max retry attempt count.
func NewConstantBackoffPolicy(interval time.Duration, maxRetryAttempts int) ConstantBackoffPolicy {
	return ConstantBackoffPolicy{interval, maxRetryAttempts}
}

// NewBackOff implements retry.Policy.
func (p ConstantBackoffPolicy) NewBackOff() backoff.BackOff {
	return withMaxRetries(backoff.NewConstantBackOff(p.interval), p.maxAttempts)
}

func withMaxRetries(b backoff.BackOff, maxAttempts int) backoff.BackOff {
	if maxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(maxAttempts))
	}
	b.Reset()
	return b
}
