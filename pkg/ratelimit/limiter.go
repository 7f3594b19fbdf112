// Package ratelimit provides in-process request limiters keyed by an
// arbitrary string, plus an IP-keyed wrapper for the HTTP middleware.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter answers whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

const (
	sweepEvery = 5 * time.Minute
	idleEvict  = time.Hour
)

// TokenBucket grants up to capacity requests immediately and refills one
// token per refillEvery. Idle keys are swept inline at most once per
// sweepEvery, so the limiter runs no background goroutine.
type TokenBucket struct {
	mu          sync.Mutex
	cells       map[string]*cell
	capacity    int
	refillEvery time.Duration
	lastSweep   time.Time
}

type cell struct {
	tokens int
	last   time.Time
}

// NewTokenBucket creates a token bucket limiter.
func NewTokenBucket(capacity int, refillEvery time.Duration) *TokenBucket {
	return &TokenBucket{
		cells:       make(map[string]*cell),
		capacity:    capacity,
		refillEvery: refillEvery,
		lastSweep:   time.Now(),
	}
}

// Allow consumes one token for key, refilling first based on elapsed time.
func (l *TokenBucket) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.sweepLocked(now)

	c, ok := l.cells[key]
	if !ok {
		c = &cell{tokens: l.capacity, last: now}
		l.cells[key] = c
	}

	if refilled := int(now.Sub(c.last) / l.refillEvery); refilled > 0 {
		c.tokens += refilled
		if c.tokens > l.capacity {
			c.tokens = l.capacity
		}
		c.last = now
	}

	if c.tokens == 0 {
		return false, nil
	}
	c.tokens--
	return true, nil
}

// Reset forgets all state for key.
func (l *TokenBucket) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cells, key)
	return nil
}

func (l *TokenBucket) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < sweepEvery {
		return
	}
	for key, c := range l.cells {
		if now.Sub(c.last) > idleEvict {
			delete(l.cells, key)
		}
	}
	l.lastSweep = now
}

// SlidingWindow allows at most limit requests per key within the trailing
// span. Hits outside the span are pruned on every call for the key touched.
type SlidingWindow struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	limit     int
	span      time.Duration
	lastSweep time.Time
}

// NewSlidingWindow creates a sliding window limiter.
func NewSlidingWindow(limit int, span time.Duration) *SlidingWindow {
	return &SlidingWindow{
		hits:      make(map[string][]time.Time),
		limit:     limit,
		span:      span,
		lastSweep: time.Now(),
	}
}

// Allow records a hit for key unless the trailing window is already full.
func (l *SlidingWindow) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.sweepLocked(now)

	recent := pruneBefore(l.hits[key], now.Add(-l.span))
	if len(recent) >= l.limit {
		l.hits[key] = recent
		return false, nil
	}
	l.hits[key] = append(recent, now)
	return true, nil
}

// Reset forgets all state for key.
func (l *SlidingWindow) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hits, key)
	return nil
}

func (l *SlidingWindow) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < sweepEvery {
		return
	}
	cutoff := now.Add(-l.span)
	for key, hits := range l.hits {
		if recent := pruneBefore(hits, cutoff); len(recent) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = recent
		}
	}
	l.lastSweep = now
}

// pruneBefore drops hits at or before cutoff, keeping the original order.
// Hits are appended chronologically, so the slice can be cut at the first
// surviving entry.
func pruneBefore(hits []time.Time, cutoff time.Time) []time.Time {
	for i, h := range hits {
		if h.After(cutoff) {
			return hits[i:]
		}
	}
	return nil
}

// IPRateLimiter keys a sliding window limiter by client IP.
type IPRateLimiter struct {
	limiter Limiter
}

// NewIPRateLimiter creates a per-IP limiter allowing requestsPerMinute
// requests in any trailing minute.
func NewIPRateLimiter(requestsPerMinute int) *IPRateLimiter {
	return &IPRateLimiter{
		limiter: NewSlidingWindow(requestsPerMinute, time.Minute),
	}
}

// Allow reports whether a request from ip may proceed.
func (l *IPRateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	return l.limiter.Allow(ctx, "ip:"+ip)
}

// Reset clears the window for ip.
func (l *IPRateLimiter) Reset(ctx context.Context, ip string) error {
	return l.limiter.Reset(ctx, "ip:"+ip)
}
