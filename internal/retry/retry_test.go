package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/config"
)

func testConfig() config.RetryConfig {
	return config.RetryConfig{
		MaxAttempts:       3,
		InitialDelayMs:    1,
		BackoffMultiplier: 1.5,
		MaxDelayMs:        5,
		JitterFraction:    0,
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := New(testConfig())
	attempts := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestDoStopsAtMaxAttempts(t *testing.T) {
	p := New(testConfig())
	attempts := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("always fails")
	})
	require.Error(t, err)
	require.Equal(t, testConfig().MaxAttempts, attempts)
}

func TestDoStopsImmediatelyOnPermanentError(t *testing.T) {
	p := New(testConfig())
	attempts := 0
	sentinel := errors.New("client fault")
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return backoff.Permanent(sentinel)
	})
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestMaxAttemptsToRetries(t *testing.T) {
	require.Equal(t, 0, maxAttemptsToRetries(0))
	require.Equal(t, 0, maxAttemptsToRetries(1))
	require.Equal(t, 2, maxAttemptsToRetries(3))
}
