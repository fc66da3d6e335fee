package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_New(t *testing.T) {
	limiter := New(10, time.Second)

	assert.NotNil(t, limiter)
	assert.Equal(t, MetricsSnapshot{}, limiter.Metrics())
}

func TestRateLimiter_Wait_WithinBurst(t *testing.T) {
	limiter := New(5, time.Second)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Wait(context.Background(), "ka10001"))
	}

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, int64(5), limiter.Metrics().TotalWaits)
}

func TestRateLimiter_Wait_ContextCancellation(t *testing.T) {
	limiter := New(1, time.Minute)

	require.NoError(t, limiter.Wait(context.Background(), ""))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, "")
	assert.Error(t, err)
	assert.Equal(t, int64(1), limiter.Metrics().CancelledWaits)
}

func TestRateLimiter_Buckets(t *testing.T) {
	limiter := New(100, time.Second)

	require.NoError(t, limiter.Wait(context.Background(), "ka10001"))
	require.NoError(t, limiter.Wait(context.Background(), "ka10001"))
	require.NoError(t, limiter.Wait(context.Background(), "au10001"))
	require.NoError(t, limiter.Wait(context.Background(), ""))

	assert.Equal(t, int32(2), limiter.Metrics().BucketCount)
}

func TestRateLimiter_SetBucketLimit(t *testing.T) {
	limiter := New(100, time.Second)
	limiter.SetBucketLimit("ka10001", 1, time.Minute)

	require.NoError(t, limiter.Wait(context.Background(), "ka10001"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, limiter.Wait(ctx, "ka10001"))
	assert.NoError(t, limiter.Wait(context.Background(), "ka10002"))
}

func TestRateLimiter_UnlimitedGlobal(t *testing.T) {
	limiter := New(0, 0)
	limiter.SetBucketLimit("ka10001", 1, time.Minute)

	for i := 0; i < 50; i++ {
		require.NoError(t, limiter.Wait(context.Background(), "au10001"))
	}
	require.NoError(t, limiter.Wait(context.Background(), "ka10001"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.Wait(ctx, "ka10001"))
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := New(1000, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, limiter.Wait(context.Background(), "ka10001"))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), limiter.Metrics().TotalWaits)
	assert.Equal(t, int32(1), limiter.Metrics().BucketCount)
}
