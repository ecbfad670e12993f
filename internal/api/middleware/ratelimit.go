package middleware

import (
	"net/http"

	"github.com/mcoot/textworld/internal/api/apierr"
	"github.com/mcoot/textworld/internal/middleware"
)

// RateLimit creates per-IP rate limiting middleware for the API
// Returns JSON error responses when a client is over its limit
func RateLimit(l *middleware.RateLimiter) func(http.Handler) http.Handler {
	return middleware.RateLimit(l, apiRateLimitHandler)
}

func apiRateLimitHandler(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewRateLimitedError())
}
