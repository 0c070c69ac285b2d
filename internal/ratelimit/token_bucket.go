// File: internal/ratelimit/token_bucket.go
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter keeps one token bucket per key (user, guest session or IP).
// Buckets idle for longer than maxAge are dropped.
type KeyedLimiter struct {
	rate  rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*keyedEntry
	maxAge   time.Duration
	now      func() time.Time

	stopCh    chan struct{}
	closeOnce sync.Once
}

type keyedEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewKeyedLimiter(rps float64, burst int) *KeyedLimiter {
	if burst <= 0 {
		burst = 1
	}
	l := &KeyedLimiter{
		rate:     rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*keyedEntry),
		maxAge:   10 * time.Minute,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop(5 * time.Minute)
	return l
}

func (l *KeyedLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &keyedEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastAccess = now
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Len reports how many buckets are tracked.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *KeyedLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.stopCh:
			return
		}
	}
}

func (l *KeyedLimiter) evictIdle() {
	cutoff := l.now().Add(-l.maxAge)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, entry := range l.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
}

func (l *KeyedLimiter) Close() {
	l.closeOnce.Do(func() { close(l.stopCh) })
}
