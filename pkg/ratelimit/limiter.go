// Package ratelimit provides keyed token buckets and a daily quota, both
// driven by an injectable clock.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// Limiter is a token bucket per key refilled at a per-minute rate.
type Limiter struct {
	mu            sync.Mutex
	buckets       map[string]*bucket
	ratePerMinute float64
	burst         float64
	ttl           time.Duration
	now           Clock
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now Clock) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIdleTTL sets how long an idle key is remembered.
func WithIdleTTL(ttl time.Duration) Option {
	return func(l *Limiter) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// New builds a Limiter. A non-positive burst falls back to the per-minute rate.
func New(requestsPerMinute, burst int, opts ...Option) *Limiter {
	if burst <= 0 {
		burst = requestsPerMinute
	}
	l := &Limiter{
		buckets:       make(map[string]*bucket),
		ratePerMinute: float64(requestsPerMinute),
		burst:         float64(burst),
		ttl:           5 * time.Minute,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow takes one token from key's bucket if available.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.buckets[key] = b
	} else {
		elapsed := now.Sub(b.lastSeen).Minutes()
		if elapsed > 0 {
			b.tokens = math.Min(l.burst, b.tokens+elapsed*l.ratePerMinute)
		}
		b.lastSeen = now
	}
	l.cleanupLocked(now)
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *Limiter) cleanupLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.ttl {
			delete(l.buckets, key)
		}
	}
}

// Quota counts calls per UTC calendar day.
type Quota struct {
	mu    sync.Mutex
	limit int
	day   string
	used  int
	now   Clock
}

// NewQuota builds a daily quota. A non-positive limit never blocks.
func NewQuota(limit int, now Clock) *Quota {
	if now == nil {
		now = time.Now
	}
	return &Quota{limit: limit, now: now}
}

// Take consumes one call, reporting false once today's limit is spent.
func (q *Quota) Take() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollLocked()
	if q.limit > 0 && q.used >= q.limit {
		return false
	}
	q.used++
	return true
}

// Remaining reports calls left today, or -1 when unlimited.
func (q *Quota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.limit <= 0 {
		return -1
	}
	q.rollLocked()
	return q.limit - q.used
}

func (q *Quota) rollLocked() {
	day := q.now().UTC().Format("2006-01-02")
	if day != q.day {
		q.day = day
		q.used = 0
	}
}
