package api

import (
	"net/http"

	"golang.org/x/time/rate"
)

const (
	// Default budget for the exhaustive pricing strategy, on top of the
	// router-wide limit.
	defaultOptimalRPS   = 2.0
	defaultOptimalBurst = 4
)

type rateLimiter interface {
	Allow() bool
}

type limiterAdapter struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &limiterAdapter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

// optionalLimiter returns nil, meaning unlimited, when either setting is non-positive.
func optionalLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 || burst <= 0 {
		return nil
	}
	return newTokenBucketLimiter(ratePerSecond, burst)
}

func (l *limiterAdapter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		writeRateLimited(w, "request rate limit exceeded, please retry shortly")
	})
}

// allowStrategy reports whether a checkout with strategy may run now.
// Only the optimal strategy has its own bucket.
func (h *Handler) allowStrategy(strategy string) bool {
	if strategy != strategyOptimal || h.optimalLimiter == nil {
		return true
	}
	return h.optimalLimiter.Allow()
}

func writeRateLimited(w http.ResponseWriter, details string, suggestion ...string) {
	w.Header().Set("Retry-After", "1")
	writeError(w, http.StatusTooManyRequests, "Too many requests", details, suggestion...)
}
