// Package breaker wraps gobreaker.CircuitBreaker with the two breaker
// classes the dispatcher needs: one for read operations (which are
// retried) and one for writes (which are not), per spec §4.5 component 1.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/boardwire/boardwire/internal/config"
)

// ErrOpen is returned when a call is rejected because the breaker is open.
var ErrOpen = gobreaker.ErrOpenState

// Breaker guards calls to the storage layer for one operation class.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New builds a Breaker named class ("read" or "write") from cfg.
func New(class string, cfg config.BreakerConfig) *Breaker {
	settings := gobreaker.Settings{
		Name:        class,
		MaxRequests: uint32(cfg.HalfOpenSuccessThreshold),
		Interval:    time.Duration(cfg.FailureWindowSecs) * time.Second,
		Timeout:     time.Duration(cfg.OpenDurationSecs) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.FailureThreshold)
		},
		// Logical outcomes (not-found, validation, conflict) are not
		// infrastructure failures — only errors marked via MarkRetriable
		// count against the breaker, per spec §4.5 step 4.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetriable(err)
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// retriableError marks an error as transient I/O: eligible for
// RetryPolicy and counted as a breaker failure. Logical errors (not
// found, validation, conflict) are never wrapped in this and pass
// through the breaker uncounted.
type retriableError struct{ err error }

func (r *retriableError) Error() string { return r.err.Error() }
func (r *retriableError) Unwrap() error { return r.err }

// MarkRetriable wraps err so it is treated as transient I/O.
func MarkRetriable(err error) error {
	if err == nil {
		return nil
	}
	return &retriableError{err: err}
}

// IsRetriable reports whether err (or something it wraps) was marked by
// MarkRetriable.
func IsRetriable(err error) bool {
	var r *retriableError
	return errors.As(err, &r)
}

// Execute runs fn through the breaker. A context cancellation or deadline
// inside fn propagates as-is; the breaker only classifies fn's own error.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	return err
}

// IsOpen reports whether err originated from a call the breaker rejected
// outright: either the breaker is fully Open, or it is HalfOpen and has
// already admitted its allotted probe requests.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// State exposes the current breaker state for health/diagnostic reporting.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }
