package httpcache

import (
	"os"
	"strconv"

	"golang.org/x/time/rate"
)

// limiter paces all outbound requests. The API tolerates roughly one
// request per second per session before it starts returning 429s.
var limiter = newDefaultLimiter()

// newDefaultLimiter creates a rate limiter using env overrides if present.
func newDefaultLimiter() *rate.Limiter {
	rps := 1.0
	burst := 2
	if v := os.Getenv("TW_HTTP_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			rps = f
		}
	}
	if v := os.Getenv("TW_HTTP_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			burst = n
		}
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// SetRateLimit replaces the global request pacing. Intended for tests and
// for callers that know their session's tolerated request rate.
func SetRateLimit(rps float64, burst int) {
	limiter = rate.NewLimiter(rate.Limit(rps), burst)
}
