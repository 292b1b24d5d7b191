package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy bounds how often and how patiently a dispatch is retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of dispatch attempts, first included
	MaxAttempts int

	// Delays is the backoff schedule between attempts. When attempts
	// outnumber entries the last delay is reused.
	Delays []time.Duration

	// AttemptTimeout is the deadline for a single dispatch attempt,
	// independent of the schedule. A hung collaborator call counts as a
	// retryable failure for that attempt.
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy returns the service defaults: 3 attempts,
// 1s/5s/15s backoff, 30s per attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		Delays:         []time.Duration{1 * time.Second, 5 * time.Second, 15 * time.Second},
		AttemptTimeout: 30 * time.Second,
	}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	if len(p.Delays) == 0 {
		return 0
	}
	if attempt >= len(p.Delays) {
		return p.Delays[len(p.Delays)-1]
	}
	return p.Delays[attempt]
}

/* Retrier wraps a dispatch attempt with bounded retry and backoff.
 * Terminal failures short-circuit; retryable ones sleep and go again.
 * The sleep suspends only this delivery, never a shared lock, so
 * concurrent deliveries are unaffected.
 */
type Retrier struct {
	policy RetryPolicy
	logger *slog.Logger

	// attemptsFor overrides MaxAttempts for specific event types
	attemptsFor func(eventType string) (int, bool)

	// sleep is injectable so tests can record delays instead of waiting
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a Retrier with the given policy.
// Zero-valued policy fields fall back to DefaultRetryPolicy.
func NewRetrier(policy RetryPolicy, logger *slog.Logger) *Retrier {
	defaults := DefaultRetryPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaults.MaxAttempts
	}
	if len(policy.Delays) == 0 {
		policy.Delays = defaults.Delays
	}
	if policy.AttemptTimeout <= 0 {
		policy.AttemptTimeout = defaults.AttemptTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrier{
		policy: policy,
		logger: logger,
		sleep:  sleepContext,
	}
}

// WithAttemptOverride installs a per-event-type attempt budget, consulted
// before the policy default. The rules table provides one.
func (r *Retrier) WithAttemptOverride(attemptsFor func(eventType string) (int, bool)) *Retrier {
	r.attemptsFor = attemptsFor
	return r
}

// Run attempts dispatch up to MaxAttempts times.
// Any successful attempt short-circuits; a terminal error stops the loop;
// exhausting the budget returns ErrMaxRetries wrapping the last error.
func (r *Retrier) Run(ctx context.Context, event Event, dispatch func(ctx context.Context, event Event) (string, error)) (string, error) {
	maxAttempts := r.policy.MaxAttempts
	if r.attemptsFor != nil {
		if attempts, ok := r.attemptsFor(event.RawType); ok && attempts > 0 {
			maxAttempts = attempts
		}
	}

	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.policy.delay(attempt - 1)
			r.logger.Info("retrying event",
				"event_id", event.ID,
				"event_type", event.RawType,
				"attempt", attempt+1,
				"delay", delay)
			if err := r.sleep(ctx, delay); err != nil {
				return "", fmt.Errorf("waiting to retry: %w", err)
			}
		}

		summary, err := r.attempt(ctx, event, dispatch)
		if err == nil {
			return summary, nil
		}
		lastErr = err

		if IsTerminal(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrMaxRetries, maxAttempts, lastErr)
}

func (r *Retrier) attempt(ctx context.Context, event Event, dispatch func(ctx context.Context, event Event) (string, error)) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.policy.AttemptTimeout)
	defer cancel()

	summary, err := dispatch(attemptCtx, event)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		// The attempt deadline fired, not the caller's context
		return "", Transient(fmt.Errorf("attempt timed out after %s: %w", r.policy.AttemptTimeout, err))
	}
	return summary, err
}

// sleepContext delays without blocking other in-flight events and wakes
// early when the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
