package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting parameters per endpoint category.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// Default limits for the status service.
var (
	// StandardRateLimit applies to read-only status endpoints (120 req/min).
	StandardRateLimit = RateLimitConfig{RequestLimit: 120, WindowLength: time.Minute}

	// OpsRateLimit applies to mutating operator endpoints (10 req/min); a
	// recovery pass is not something to hammer.
	OpsRateLimit = RateLimitConfig{RequestLimit: 10, WindowLength: time.Minute}
)

// RateLimitByIP creates an IP-keyed rate limiter.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitExceededHandler),
	)
}

func limitExceededHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", strconv.Itoa(60))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":      "rate limit exceeded",
		"request_id": GetRequestID(r.Context()),
	})
}
