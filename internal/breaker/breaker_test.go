package breaker

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/config"
)

func testConfig() config.BreakerConfig {
	return config.BreakerConfig{
		FailureThreshold:         2,
		FailureWindowSecs:        30,
		OpenDurationSecs:         30,
		HalfOpenSuccessThreshold: 1,
	}
}

func TestMarkRetriableRoundTrips(t *testing.T) {
	base := errors.New("boom")
	wrapped := MarkRetriable(base)
	require.True(t, IsRetriable(wrapped))
	require.ErrorIs(t, wrapped, base)
	require.False(t, IsRetriable(base))
}

func TestMarkRetriableNil(t *testing.T) {
	require.Nil(t, MarkRetriable(nil))
}

func TestLogicalErrorsDoNotTripBreaker(t *testing.T) {
	b := New("read", testConfig())
	logical := errors.New("not found")

	for i := 0; i < 10; i++ {
		_ = b.Execute(context.Background(), func(ctx context.Context) error { return logical })
	}
	require.Equal(t, gobreaker.StateClosed, b.State())
}

func TestRetriableErrorsTripBreaker(t *testing.T) {
	b := New("read", testConfig())
	transient := MarkRetriable(errors.New("connection reset"))

	for i := 0; i < testConfig().FailureThreshold; i++ {
		_ = b.Execute(context.Background(), func(ctx context.Context) error { return transient })
	}
	require.Equal(t, gobreaker.StateOpen, b.State())

	err := b.Execute(context.Background(), func(ctx context.Context) error { return nil })
	require.True(t, IsOpen(err))
}

func TestIsOpenRecognizesTooManyRequests(t *testing.T) {
	require.True(t, IsOpen(gobreaker.ErrTooManyRequests), "a HalfOpen probe rejection is an open-breaker rejection too")
}

func TestExecuteSuccessPassesThrough(t *testing.T) {
	b := New("write", testConfig())
	err := b.Execute(context.Background(), func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	require.Equal(t, gobreaker.StateClosed, b.State())
}
