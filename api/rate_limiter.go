package api

import (
	"sync"
	"time"
)

// rateLimiter is a sliding-window counter per key (client IP).
type rateLimiter struct {
	max     int
	window  time.Duration
	mu      sync.Mutex
	entries map[string][]time.Time
	now     func() time.Time
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{max: max, window: window, entries: make(map[string][]time.Time), now: time.Now}
}

func (l *rateLimiter) Allow(key string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	arr := l.entries[key]
	// drop old
	kept := arr[:0]
	for _, t := range arr {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}
