// Package retry executes operations under a bounded-attempt policy with
// geometric backoff and per-attempt timeouts.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rubdev/labelctl/internal/faults"
)

var ErrNoAttempts = errors.New("retry: no attempts permitted")

// Policy bounds how an operation is retried.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration

	// Retry eligibility, evaluated independently after each failure.
	RetryTimeouts bool
	RetryFaults   bool
	RetryCodes    []faults.Code
}

// DefaultPolicy retries timeouts and generic faults up to three attempts
// with a doubling one-second delay.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   3,
		BaseDelay:     time.Second,
		Multiplier:    2.0,
		MaxDelay:      10 * time.Second,
		RetryTimeouts: true,
		RetryFaults:   true,
	}
}

// Outcome reports the effort a Do call spent.
type Outcome struct {
	Attempts int
	Elapsed  time.Duration
}

// Do runs op up to MaxAttempts times, sleeping DelayFor between failed
// attempts. MaxAttempts zero performs no invocations and fails
// immediately. The last failure is returned when attempts are exhausted
// or the failure is not retry-eligible.
func Do[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, Outcome, error) {
	var zero T
	start := time.Now()

	if policy.MaxAttempts <= 0 {
		return zero, Outcome{Elapsed: time.Since(start)}, ErrNoAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, DelayFor(policy, attempt)); err != nil {
				return zero, Outcome{Attempts: attempt - 1, Elapsed: time.Since(start)}, err
			}
		}
		v, err := op(ctx)
		if err == nil {
			return v, Outcome{Attempts: attempt, Elapsed: time.Since(start)}, nil
		}
		lastErr = err
		if !shouldRetry(policy, err) {
			return zero, Outcome{Attempts: attempt, Elapsed: time.Since(start)}, err
		}
	}
	return zero, Outcome{Attempts: policy.MaxAttempts, Elapsed: time.Since(start)}, lastErr
}

// DelayFor returns the inter-attempt delay before attempt N (1-based).
// An unconfigured base delay means immediate retry.
func DelayFor(policy Policy, attempt int) time.Duration {
	if attempt <= 1 || policy.BaseDelay <= 0 {
		return 0
	}
	mult := policy.Multiplier
	if mult < 1.0 {
		mult = 1.0
	}
	delay := float64(policy.BaseDelay) * math.Pow(mult, float64(attempt-2))
	if policy.MaxDelay > 0 && delay > float64(policy.MaxDelay) {
		delay = float64(policy.MaxDelay)
	}
	return time.Duration(delay)
}

func shouldRetry(policy Policy, err error) bool {
	if faults.IsTimeout(err) {
		return policy.RetryTimeouts
	}
	for _, code := range policy.RetryCodes {
		if faults.HasCode(err, code) {
			return true
		}
	}
	return policy.RetryFaults
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WithTimeout bounds a single operation's wall-clock duration,
// independently of any attempt count. A late result is discarded; the
// caller gets an operation timeout fault.
func WithTimeout[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if d <= 0 {
		return op(ctx)
	}
	opCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := op(opCtx)
		ch <- result{v: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, faults.New(faults.CodeOperationTimeout, "operation exceeded %s", d)
	}
}
