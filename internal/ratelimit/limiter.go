// Package ratelimit paces outgoing API calls. It only delays calls; it never
// rejects or retries them.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter applies one global limit plus one limit per API id.
type RateLimiter struct {
	global   *rate.Limiter
	buckets  sync.Map
	requests int
	period   time.Duration
	metrics  *Metrics
}

// Metrics tracks statistics about rate limiter usage.
type Metrics struct {
	totalWaits     atomic.Int64
	cancelledWaits atomic.Int64
	bucketCount    atomic.Int32
}

// New creates a RateLimiter allowing requests per period, globally and per bucket.
// A non-positive requests leaves both unlimited until SetBucketLimit narrows a bucket.
func New(requests int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		global:   newLimiter(requests, period),
		requests: requests,
		period:   period,
		metrics:  &Metrics{},
	}
}

func newLimiter(requests int, period time.Duration) *rate.Limiter {
	if requests <= 0 || period <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	rps := float64(requests) / period.Seconds()
	return rate.NewLimiter(rate.Limit(rps), requests)
}

// Wait blocks until both the global limiter and the named bucket allow a call,
// or ctx is done. An empty bucket name waits on the global limiter only.
func (r *RateLimiter) Wait(ctx context.Context, bucket string) error {
	r.metrics.totalWaits.Add(1)
	if err := r.global.Wait(ctx); err != nil {
		r.metrics.cancelledWaits.Add(1)
		return err
	}
	if bucket == "" {
		return nil
	}
	if err := r.getBucket(bucket).Wait(ctx); err != nil {
		r.metrics.cancelledWaits.Add(1)
		return err
	}
	return nil
}

func (r *RateLimiter) getBucket(bucket string) *rate.Limiter {
	if v, ok := r.buckets.Load(bucket); ok {
		return v.(*rate.Limiter)
	}

	actual, loaded := r.buckets.LoadOrStore(bucket, newLimiter(r.requests, r.period))
	if !loaded {
		r.metrics.bucketCount.Add(1)
	}
	return actual.(*rate.Limiter)
}

// SetBucketLimit overrides the limit of one API id.
// The bucket starts full at its new burst.
func (r *RateLimiter) SetBucketLimit(bucket string, requests int, period time.Duration) {
	if _, loaded := r.buckets.Swap(bucket, newLimiter(requests, period)); !loaded {
		r.metrics.bucketCount.Add(1)
	}
}

// Metrics returns a snapshot of the current rate limiter statistics.
func (r *RateLimiter) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalWaits:     r.metrics.totalWaits.Load(),
		CancelledWaits: r.metrics.cancelledWaits.Load(),
		BucketCount:    r.metrics.bucketCount.Load(),
	}
}

// MetricsSnapshot is a point-in-time capture of rate limiter statistics.
type MetricsSnapshot struct {
	// TotalWaits is the number of Wait calls.
	TotalWaits int64
	// CancelledWaits is the number of waits abandoned because ctx ended.
	CancelledWaits int64
	// BucketCount is the number of API id buckets in use.
	BucketCount int32
}
