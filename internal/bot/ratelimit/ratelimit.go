// Package ratelimit provides a per-user sliding-window request limiter.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter allows up to max requests per user inside a rolling window.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	hits   map[int64][]time.Time
	now    func() time.Time
}

// New creates a Limiter allowing max requests per window for each user.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		hits:   make(map[int64][]time.Time),
		now:    time.Now,
	}
}

// Limited records a request from userID and reports whether it exceeds
// the allowed rate. A limited request is not recorded.
func (l *Limiter) Limited(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.hits[userID][:0]
	for _, at := range l.hits[userID] {
		if now.Sub(at) < l.window {
			recent = append(recent, at)
		}
	}

	if len(recent) >= l.max {
		l.hits[userID] = recent
		return true
	}

	recent = append(recent, now)
	if len(recent) > l.max {
		recent = recent[len(recent)-l.max:]
	}
	l.hits[userID] = recent
	return false
}
