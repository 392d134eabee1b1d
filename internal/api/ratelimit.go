package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = 5 * time.Minute
	limiterSweepInterval = time.Minute
)

type limiterBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ipLimiter 按客户端 IP 维护令牌桶；rate <= 0 时不限流
type ipLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*limiterBucket
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func newIPLimiter(perSecond float64, burst int) *ipLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &ipLimiter{
		buckets: make(map[string]*limiterBucket),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow consumes one token for key.
func (l *ipLimiter) Allow(key string) bool {
	if l == nil || l.limit <= 0 {
		return true
	}
	if key == "" {
		key = "unknown"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterSweepInterval {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > limiterIdleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &limiterBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}
