// Package retry wraps cenkalti/backoff/v4's exponential backoff for the
// read-path retry policy described in spec §4.5 component 2. Only reads
// are retried; the caller decides that scope, this package just runs the
// backoff/retry loop against a configured budget.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/boardwire/boardwire/internal/config"
)

// Policy drives backoff.Retry with parameters sourced from config.RetryConfig.
type Policy struct {
	cfg config.RetryConfig
}

// New builds a Policy from cfg.
func New(cfg config.RetryConfig) *Policy {
	return &Policy{cfg: cfg}
}

// Do runs fn, retrying on a non-nil, non-permanent error up to MaxAttempts
// times with exponential backoff. Wrap an error in backoff.Permanent inside
// fn to stop retrying immediately (e.g. a client-fault error should never
// be retried).
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     time.Duration(p.cfg.InitialDelayMs) * time.Millisecond,
		RandomizationFactor: p.cfg.JitterFraction,
		Multiplier:          p.cfg.BackoffMultiplier,
		MaxInterval:         time.Duration(p.cfg.MaxDelayMs) * time.Millisecond,
		MaxElapsedTime:       0, // bounded by WithMaxRetries below, not wall clock
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()

	bounded := backoff.WithMaxRetries(b, uint64(maxAttemptsToRetries(p.cfg.MaxAttempts)))
	withCtx := backoff.WithContext(bounded, ctx)

	return backoff.Retry(func() error {
		return fn(ctx)
	}, withCtx)
}

// maxAttemptsToRetries converts a total-attempts count (including the
// first try) into the retries-after-the-first count backoff.WithMaxRetries
// expects.
func maxAttemptsToRetries(maxAttempts int) int {
	if maxAttempts <= 1 {
		return 0
	}
	return maxAttempts - 1
}
