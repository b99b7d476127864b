// Package retry bounds how many times a unit of browser work is attempted.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultAttempts is used when a policy asks for zero or fewer attempts.
const DefaultAttempts = 3

// Policy configures Do.
type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// Exponential enables jittered exponential delays between attempts.
	// The zero value retries immediately.
	Exponential  bool
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// OnRetry is called after a failed attempt that will be retried.
	OnRetry func(attempt int, err error)
}

// Do runs op until it succeeds or the attempt budget is spent. It returns the
// number of attempts made and, on exhaustion, the error of the last attempt.
// Context cancellation stops retrying immediately.
func Do(ctx context.Context, p Policy, op func(attempt int) error) (int, error) {
	if p.Attempts <= 0 {
		p.Attempts = DefaultAttempts
	}

	attempts := 0
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempts++
		err := op(attempts)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, _ time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(attempts, err)
		}
	}

	err := backoff.RetryNotify(operation, p.backOff(ctx), notify)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	return attempts, err
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if p.Exponential {
		exp := backoff.NewExponentialBackOff()
		if p.InitialDelay > 0 {
			exp.InitialInterval = p.InitialDelay
		}
		if p.MaxDelay > 0 {
			exp.MaxInterval = p.MaxDelay
		}
		exp.MaxElapsedTime = 0
		b = exp
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.Attempts-1)), ctx)
}
