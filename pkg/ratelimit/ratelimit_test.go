package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterCapsWithinWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(5, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		d, err := l.Allow(context.Background(), "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "attempt %d", i+1)
	}

	d, err := l.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Minute, d.RetryAfter)

	other, err := l.Allow(context.Background(), "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	now = now.Add(time.Minute)
	d, err = l.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestRedisLimiterSharedWindow(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	first := NewRedisLimiter(client, "super", 5, time.Minute)
	second := NewRedisLimiter(client, "super", 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := first.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	for i := 0; i < 2; i++ {
		d, err := second.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := first.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 6, d.Count)
	assert.True(t, d.RetryAfter > 0)

	srv.FastForward(time.Minute + time.Second)

	d, err = second.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestRedisLimiterReportsBackendFailure(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1})
	defer client.Close()
	srv.Close()

	l := NewRedisLimiter(client, "super", 5, time.Minute)
	_, err := l.Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
}
