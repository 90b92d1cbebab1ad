package ratelimit

import (
	"context"
	"sync"
	"time"
)

// simple token bucket per key (principal or IP).
type rateBucket struct {
	tokens     float64
	lastRefill time.Time
}

// TokenBucket refills limitPerMinute tokens per minute for each key.
type TokenBucket struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	limit   float64
	rate    float64
	now     func() time.Time
}

func NewTokenBucket(limitPerMinute float64) *TokenBucket {
	return &TokenBucket{
		buckets: make(map[string]*rateBucket),
		limit:   limitPerMinute,
		rate:    limitPerMinute / 60.0,
		now:     time.Now,
	}
}

func (b *TokenBucket) Allow(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	bucket, ok := b.buckets[key]
	if !ok {
		bucket = &rateBucket{tokens: b.limit, lastRefill: now}
		b.buckets[key] = bucket
	}

	// Refill tokens
	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.tokens = min(b.limit, bucket.tokens+elapsed*b.rate)
	bucket.lastRefill = now

	if bucket.tokens < 1 {
		return false, nil
	}
	bucket.tokens -= 1
	return true, nil
}

func (b *TokenBucket) Backend() string { return "memory" }
