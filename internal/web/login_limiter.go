package web

import (
	"sync"
	"time"
)

// LoginLimiter is a fixed-window limiter keyed by client IP. It guards
// the single admin login endpoint, so the map stays tiny and entries
// are dropped on success or window expiry.
type LoginLimiter struct {
	mu          sync.Mutex
	windows     map[string]*attemptWindow
	maxAttempts int
	window      time.Duration
}

type attemptWindow struct {
	count int
	reset time.Time
}

// NewLoginLimiter creates a limiter allowing maxAttempts per window.
func NewLoginLimiter(maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &LoginLimiter{
		windows:     make(map[string]*attemptWindow),
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allow records an attempt for the key and reports whether it is
// permitted.
func (l *LoginLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.After(w.reset) {
		w = &attemptWindow{reset: now.Add(l.window)}
		l.windows[key] = w
	}

	if w.count >= l.maxAttempts {
		return false
	}
	w.count++
	return true
}

// Reset clears attempts for a key after a successful login.
func (l *LoginLimiter) Reset(key string) {
	if key == "" {
		return
	}
	l.mu.Lock()
	delete(l.windows, key)
	l.mu.Unlock()
}
