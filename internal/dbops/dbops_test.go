package dbops

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/breaker"
	"github.com/boardwire/boardwire/internal/config"
	"github.com/boardwire/boardwire/internal/logging"
	"github.com/boardwire/boardwire/internal/retry"
	"github.com/boardwire/boardwire/internal/wireerr"
)

func testOps() *Ops {
	readBreaker := breaker.New("read", config.BreakerConfig{FailureThreshold: 5, FailureWindowSecs: 30, OpenDurationSecs: 30, HalfOpenSuccessThreshold: 2})
	writeBreaker := breaker.New("write", config.BreakerConfig{FailureThreshold: 5, FailureWindowSecs: 30, OpenDurationSecs: 30, HalfOpenSuccessThreshold: 2})
	retryPolicy := retry.New(config.RetryConfig{MaxAttempts: 3, InitialDelayMs: 1, BackoffMultiplier: 1.5, MaxDelayMs: 5})
	return New(readBreaker, writeBreaker, retryPolicy, time.Second, logging.NewDiscard())
}

func TestReadRetriesRetriableErrorsUntilSuccess(t *testing.T) {
	ops := testOps()
	attempts := 0
	err := ops.Read(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return Retriable(errors.New("connection reset"))
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestReadDoesNotRetryLogicalErrors(t *testing.T) {
	ops := testOps()
	attempts := 0
	sentinel := errors.New("not found")
	err := ops.Read(context.Background(), func(ctx context.Context) error {
		attempts++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, attempts)
}

func TestReadExhaustionMapsToServiceUnavailable(t *testing.T) {
	ops := testOps()
	err := ops.Read(context.Background(), func(ctx context.Context) error {
		return Retriable(errors.New("still down"))
	})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeServiceUnavailable, werr.Code)
}

func TestWriteDoesNotRetry(t *testing.T) {
	ops := testOps()
	attempts := 0
	err := ops.Write(context.Background(), func(ctx context.Context) error {
		attempts++
		return Retriable(errors.New("write failed"))
	})
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestWriteTimeoutMapsToTimeout(t *testing.T) {
	readBreaker := breaker.New("read", config.BreakerConfig{FailureThreshold: 5, FailureWindowSecs: 30, OpenDurationSecs: 30, HalfOpenSuccessThreshold: 2})
	writeBreaker := breaker.New("write", config.BreakerConfig{FailureThreshold: 5, FailureWindowSecs: 30, OpenDurationSecs: 30, HalfOpenSuccessThreshold: 2})
	retryPolicy := retry.New(config.RetryConfig{MaxAttempts: 1, InitialDelayMs: 1, BackoffMultiplier: 1.5, MaxDelayMs: 5})
	ops := New(readBreaker, writeBreaker, retryPolicy, 5*time.Millisecond, logging.NewDiscard())

	err := ops.Write(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeTimeout, werr.Code)
}
