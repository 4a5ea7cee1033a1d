package chain

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per RPC endpoint. A refresh fans out
// into several concurrent eth_call requests and public nodes throttle hard.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewRateLimiter allows ratePerSecond calls per endpoint with the given burst.
// A non-positive rate disables limiting.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &RateLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   limit,
		burst:   max(burst, 1),
	}
}

// DefaultRateLimiter returns 10 requests/second with a burst of 20, enough
// for a static batch plus a user batch to start together.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(10, 20)
}

// Allow reports whether a call to endpoint may proceed now.
func (r *RateLimiter) Allow(endpoint string) bool {
	return r.bucket(endpoint).Allow()
}

// Wait blocks until a call to endpoint is allowed or ctx is done. A nil
// limiter never waits.
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	if r == nil {
		return ctx.Err()
	}
	return r.bucket(endpoint).Wait(ctx)
}

func (r *RateLimiter) bucket(endpoint string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buckets[endpoint]
	if !ok {
		b = rate.NewLimiter(r.limit, r.burst)
		r.buckets[endpoint] = b
	}
	return b
}
