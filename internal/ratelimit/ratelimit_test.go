package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/config"
)

func TestAllowRespectsBurst(t *testing.T) {
	l := New(config.RateLimitConfig{MaxRequests: 3, WindowSecs: 1})

	allowed := 0
	for i := 0; i < 5; i++ {
		if l.Allow() {
			allowed++
		}
	}
	require.Equal(t, 3, allowed)
}

func TestNewDefaultsZeroWindowToOneSecond(t *testing.T) {
	l := New(config.RateLimitConfig{MaxRequests: 1, WindowSecs: 0})
	require.True(t, l.Allow())
	require.False(t, l.Allow())
}
