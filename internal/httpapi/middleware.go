package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/smartgiftfinder/giftfinder/internal/auth"
	"github.com/smartgiftfinder/giftfinder/internal/ratelimit"
)

// RateLimitMiddleware wraps handlers with a per-endpoint-class rate limit.
// The decision keys on the authenticated user when the request carries one,
// and on the client IP otherwise, so it should run after auth middleware.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
}

// NewRateLimitMiddleware creates the middleware.
func NewRateLimitMiddleware(limiter *ratelimit.Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit enforces the named endpoint class on a handler. Rejected requests get
// a 429 with Retry-After, X-RateLimit-Remaining and X-RateLimit-Reset headers.
func (m *RateLimitMiddleware) Limit(class string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision := m.limiter.Check(r.Context(), r, class, auth.GetUserID(r.Context()))

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", decision.ResetAt.UTC().Format(time.RFC3339))

		if !decision.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
			writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
				"error":      "rate limit exceeded",
				"retryAfter": decision.RetryAfter,
			})
			return
		}

		next(w, r)
	}
}
