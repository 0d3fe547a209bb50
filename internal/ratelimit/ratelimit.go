// Package ratelimit gates how often a chat may start a download batch.
//
// It is a fixed-window token bucket: each key gets a full bucket of
// `capacity` tokens, refilled to full exactly once every window (measured
// from the last refill instant, not sliding). Declined calls do not return
// tokens. State is in-memory only.
package ratelimit

import (
	"sync"
	"time"
)

const window = time.Minute

// staleAfter is how long an untouched key survives before the opportunistic
// GC may drop it. Dropping a key resets it to a full bucket, which is only
// safe once its window is long gone.
const staleAfter = 10 * window

type bucket struct {
	tokens      int
	windowStart time.Time
}

type Limiter struct {
	mu       sync.Mutex
	capacity int
	now      func() time.Time
	buckets  map[int64]bucket
	ops      uint64
}

// New returns a limiter granting capacity calls per minute per key.
func New(capacity int) *Limiter {
	return &Limiter{
		capacity: capacity,
		now:      time.Now,
		buckets:  map[int64]bucket{},
	}
}

// SetCapacity changes the quota for future refills. Buckets already in their
// window keep their remaining tokens.
func (l *Limiter) SetCapacity(capacity int) {
	l.mu.Lock()
	l.capacity = capacity
	l.mu.Unlock()
}

// Allow reports whether key may proceed, consuming one token if so.
func (l *Limiter) Allow(key int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	l.ops++
	if l.ops%256 == 0 {
		l.gcLocked(now)
	}

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.windowStart) >= window {
		b = bucket{tokens: l.capacity, windowStart: now}
	}
	if b.tokens <= 0 {
		l.buckets[key] = b
		return false
	}
	b.tokens--
	l.buckets[key] = b
	return true
}

// gcLocked drops buckets whose window ended long ago. Bounded key space
// (active chats) makes this opportunistic pass sufficient.
func (l *Limiter) gcLocked(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.windowStart) >= staleAfter {
			delete(l.buckets, k)
		}
	}
}
