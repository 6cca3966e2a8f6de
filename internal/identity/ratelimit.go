package identity

import (
	"sync"

	"golang.org/x/time/rate"
)

// loginLimiter throttles login attempts per email with a token bucket.
// Works alongside the bcrypt cost factor: the hash slows offline attacks,
// the limiter slows online ones.
type loginLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func newLoginLimiter(attemptsPerMinute, burst int) *loginLimiter {
	return &loginLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(float64(attemptsPerMinute) / 60.0),
		burst:   burst,
	}
}

func (l *loginLimiter) allow(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Coarse reset keeps the map bounded under churn
	if len(l.buckets) > 10000 {
		l.buckets = make(map[string]*rate.Limiter)
	}

	limiter, ok := l.buckets[email]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.buckets[email] = limiter
	}

	return limiter.Allow()
}
