package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// DefaultSource keys requests that name no source
const DefaultSource = "default"

// Limiter implements per-source rate limiting
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter. A non-positive requestsPerSecond
// leaves sources without their own rate unthrottled.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait waits for rate limit clearance for the given source
func (l *Limiter) Wait(ctx context.Context, source string) error {
	return l.getLimiter(sourceKey(source)).Wait(ctx)
}

func (l *Limiter) getLimiter(source string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[source]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[source]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[source] = limiter

	return limiter
}

// SetSourceRate sets a custom rate limit for a specific source.
// A non-positive requestsPerSecond exempts the source.
func (l *Limiter) SetSourceRate(source string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	l.limiters[sourceKey(source)] = rate.NewLimiter(limit, burst)
}

func sourceKey(source string) string {
	if source == "" {
		return DefaultSource
	}
	return source
}
