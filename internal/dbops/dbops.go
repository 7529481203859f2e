// Package dbops implements the DbOps wrapper (spec §4.5): every
// repository call passes through here, guarded by a CircuitBreaker,
// retried by a RetryPolicy for idempotent reads only, bounded by an
// operation timeout, and logged with the request's correlation id.
package dbops

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/boardwire/boardwire/internal/breaker"
	"github.com/boardwire/boardwire/internal/logging"
	"github.com/boardwire/boardwire/internal/reqctx"
	"github.com/boardwire/boardwire/internal/retry"
	"github.com/boardwire/boardwire/internal/wireerr"
)

// Ops wraps a read breaker/retry pair and a write breaker (writes are not
// retried at this layer; the caller owns the transaction and optimistic
// locking per spec §4.5 step 2).
type Ops struct {
	readBreaker  *breaker.Breaker
	writeBreaker *breaker.Breaker
	retry        *retry.Policy
	timeout      time.Duration
	logger       *logging.Logger
}

// New builds Ops from its collaborators and the per-operation timeout.
func New(readBreaker, writeBreaker *breaker.Breaker, retryPolicy *retry.Policy, timeout time.Duration, logger *logging.Logger) *Ops {
	return &Ops{readBreaker: readBreaker, writeBreaker: writeBreaker, retry: retryPolicy, timeout: timeout, logger: logger}
}

// Retriable wraps err so dbops (and the breaker) treat it as transient
// I/O: retried on reads, counted against the breaker, and mapped to
// SERVICE_UNAVAILABLE on exhaustion. Logical errors (not-found,
// validation, conflict) should never be passed through this — they pass
// uncounted, per spec §4.5 step 4.
func Retriable(err error) error {
	return breaker.MarkRetriable(err)
}

// Read runs fn through the read breaker with retry, timing out after
// Ops.timeout. fn's error should be wrapped with Retriable when it
// reflects transient I/O rather than a logical outcome.
func (o *Ops) Read(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	rc := reqctx.FromContext(ctx)

	err := o.readBreaker.Execute(ctx, func(ctx context.Context) error {
		return o.retry.Do(ctx, func(ctx context.Context) error {
			err := fn(ctx)
			if err != nil && !breaker.IsRetriable(err) {
				return backoff.Permanent(err)
			}
			return err
		})
	})
	return o.classify(ctx, rc, err)
}

// Write runs fn through the write breaker, without retry — writes rely on
// their own transaction and optimistic locking for safety under replay.
func (o *Ops) Write(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	rc := reqctx.FromContext(ctx)

	err := o.writeBreaker.Execute(ctx, func(ctx context.Context) error {
		return fn(ctx)
	})
	return o.classify(ctx, rc, err)
}

func (o *Ops) classify(ctx context.Context, rc *reqctx.RequestContext, err error) error {
	if err == nil {
		return nil
	}
	if breaker.IsOpen(err) {
		o.logWithContext(rc).Warn("db call rejected, circuit open")
		return wireerr.ServiceUnavailable("dependency unavailable")
	}
	if breaker.IsRetriable(err) {
		o.logWithContext(rc).Error("db call failed with transient error", "error", err)
		return wireerr.ServiceUnavailable("dependency unavailable")
	}
	if ctx.Err() == context.DeadlineExceeded {
		o.logWithContext(rc).Error("db call timed out")
		return wireerr.Timeout("database operation timed out")
	}
	return err
}

func (o *Ops) logWithContext(rc *reqctx.RequestContext) *logging.Logger {
	if rc == nil {
		return o.logger
	}
	return o.logger.WithContext(context.Background(), rc.CorrelationID, rc.MessageID)
}
