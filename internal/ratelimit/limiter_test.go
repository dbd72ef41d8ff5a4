package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
)

func TestLimiter_BurstThenReject(t *testing.T) {
	l := New(domain.RateLimitSettings{
		Burst:           3,
		RefillPerSecond: 0.001, // effectively no refill within the test
		MaxWait:         50 * time.Millisecond,
	})
	ctx := context.Background()

	// The full burst is served immediately.
	for i := range 3 {
		require.NoError(t, l.Acquire(ctx), "call %d within burst should pass", i)
	}

	// Burst+1 is rejected after the bounded wait.
	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestLimiter_RefillAllowsLaterCall(t *testing.T) {
	l := New(domain.RateLimitSettings{
		Burst:           1,
		RefillPerSecond: 50, // 20ms per token
		MaxWait:         time.Second,
	})
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))

	start := time.Now()
	require.NoError(t, l.Acquire(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond,
		"second call should have waited for a refill")
}

func TestLimiter_CallerCancellation(t *testing.T) {
	l := New(domain.RateLimitSettings{
		Burst:           1,
		RefillPerSecond: 0.001,
		MaxWait:         time.Minute,
	})

	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLimiter_Allow(t *testing.T) {
	l := New(domain.RateLimitSettings{
		Burst:           1,
		RefillPerSecond: 0.001,
		MaxWait:         time.Second,
	})

	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}
