package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterEnforcesLimit(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)

	require.True(t, limiter.Allow("alice"))
	require.True(t, limiter.Allow("alice"))
	require.False(t, limiter.Allow("alice"))

	// Separate keys have separate windows.
	require.True(t, limiter.Allow("bob"))
}

func TestRateLimiterDisabledWhenNonPositive(t *testing.T) {
	limiter := newRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		require.True(t, limiter.Allow("alice"))
	}
}

func TestRateLimiterRejectsEmptyKey(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)
	require.False(t, limiter.Allow(""))
}
