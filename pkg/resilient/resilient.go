// Package resilient wraps external-service invocations in bounded retry,
// class-specific backoff, and escalating per-attempt timeouts.
//
// Attempt timeout escalation and inter-attempt backoff are deliberately
// separate: escalation handles a slow but healthy dependency, backoff
// handles an overloaded one. Conflating them either aborts healthy calls
// prematurely or hammers an overloaded dependency.
package resilient

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starORAIT/HRAgent/pkg/core"
	"github.com/starORAIT/HRAgent/pkg/security"
)

// Policy configures the retry loop.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseTimeout is the timeout of the first attempt; attempt i runs
	// under BaseTimeout * i.
	BaseTimeout time.Duration

	// ConnectivityWait is the fixed sleep after a connectivity error.
	ConnectivityWait time.Duration

	// BackoffUnit scales the rate-limit backoff min(2^attempt, 60) units.
	// Defaults to one second.
	BackoffUnit time.Duration
}

// DefaultPolicy mirrors the production defaults: five attempts, one-minute
// base timeout.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:      5,
		BaseTimeout:      60 * time.Second,
		ConnectivityWait: 5 * time.Second,
		BackoffUnit:      time.Second,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	p.MaxAttempts = security.ClampAttempts(p.MaxAttempts)
	if p.BaseTimeout <= 0 {
		p.BaseTimeout = 60 * time.Second
	}
	if p.ConnectivityWait <= 0 {
		p.ConnectivityWait = 5 * time.Second
	}
	if p.BackoffUnit <= 0 {
		p.BackoffUnit = time.Second
	}
	return p
}

// rateLimitBackoff is min(2^attempt, 60) backoff units, attempt 1-based.
func rateLimitBackoff(attempt int, unit time.Duration) time.Duration {
	units := int64(1) << uint(attempt)
	if units > 60 {
		units = 60
	}
	return time.Duration(units) * unit
}

// Do invokes op under the policy and returns its result.
//
// Per attempt the operation runs under an escalating timeout. Transient
// errors are retried with class-specific backoff; a malformed response
// returns immediately. After MaxAttempts unsuccessful attempts Do returns
// a *core.ExhaustedRetriesError wrapping the last error.
func Do[T any](ctx context.Context, policy Policy, logger *slog.Logger, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	policy = policy.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, policy.BaseTimeout*time.Duration(attempt))
		result, err := op(attemptCtx)
		cancel()

		if err == nil {
			return result, nil
		}
		lastErr = err

		// Parent cancellation is not retryable.
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		var malformed *core.MalformedResponseError
		if errors.As(err, &malformed) {
			return zero, err
		}

		if attempt == policy.MaxAttempts {
			break
		}

		var transient *core.TransientError
		switch {
		case errors.As(err, &transient):
			switch transient.Kind {
			case core.KindRateLimit:
				wait := rateLimitBackoff(attempt, policy.BackoffUnit)
				logger.Warn("dependency rate limited, backing off",
					"attempt", attempt, "wait", wait)
				if err := sleep(ctx, wait); err != nil {
					return zero, err
				}
			case core.KindConnectivity:
				logger.Warn("dependency connectivity error",
					"attempt", attempt, "wait", policy.ConnectivityWait)
				if err := sleep(ctx, policy.ConnectivityWait); err != nil {
					return zero, err
				}
			case core.KindGateway:
				// The escalating attempt timeout already slows the loop.
				logger.Warn("dependency gateway error, retrying",
					"attempt", attempt, "error", err)
			}
		case errors.Is(err, context.DeadlineExceeded):
			logger.Warn("attempt timed out", "attempt", attempt,
				"timeout", policy.BaseTimeout*time.Duration(attempt))
		default:
			// Unexpected error class: full detail only on the final
			// attempt to avoid log flooding on transient noise.
			logger.Warn("unexpected dependency error, retrying", "attempt", attempt)
		}
	}

	logger.Error("dependency call exhausted retries",
		"attempts", policy.MaxAttempts, "error", lastErr)
	return zero, &core.ExhaustedRetriesError{Attempts: policy.MaxAttempts, Err: lastErr}
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
