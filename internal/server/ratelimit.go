package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/ratelimit"
)

// WriteRateLimitHeaders sets the x-ratelimit-* headers for a limiter result.
func WriteRateLimitHeaders(w http.ResponseWriter, res ratelimit.Result, now time.Time) {
	if res.Limit <= 0 {
		return
	}
	h := w.Header()
	h.Set("x-ratelimit-limit-requests", strconv.Itoa(res.Limit))
	// 0 is a valid remaining value
	h.Set("x-ratelimit-remaining-requests", strconv.Itoa(res.Remaining))
	if !res.Reset.IsZero() {
		h.Set("x-ratelimit-reset-requests", res.RetryAfter(now).Round(time.Second).String())
	}
}

// ClientIP returns the remote host of a request without its port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware counts requests per key and rejects those over the limit with
// 429 and a Retry-After header. A nil limiter disables it. Limiter failures are
// logged and the request is let through.
func RateLimitMiddleware(limiter ratelimit.Limiter, prefix string, key func(*http.Request) string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), prefix+":"+key(r))
			if err != nil {
				logger.Warn("rate limiter unavailable", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			now := time.Now()
			WriteRateLimitHeaders(w, res, now)
			if !res.Allowed {
				wait := res.RetryAfter(now)
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Round(time.Second)/time.Second)))
				WriteError(w, r, domain.ErrRateLimit(fmt.Sprintf("too many requests; retry in %s", wait.Round(time.Second))))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
