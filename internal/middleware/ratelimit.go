// File: internal/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/iyunix/go-wellness/internal/ratelimit"
)

// LimitRecorder counts rejected requests. *metrics.Metrics satisfies it.
type LimitRecorder interface {
	IncRateLimited(limiter string)
}

// LoginRateLimit bans a client IP after too many login attempts. A successful
// login (2xx or redirect) resets the counter.
func LoginRateLimit(limiter *ratelimit.AttemptLimiter, logger Logger, recorder LimitRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			clientIP := ratelimit.GetClientIP(r)

			allowed, info := limiter.Allow(clientIP)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))

			if !allowed {
				logger.Warn("login blocked", "client_ip", clientIP, "banned", info.Banned)
				if recorder != nil {
					recorder.IncRateLimited("login")
				}
				if info.RetryAfter > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%.0f", info.RetryAfter.Seconds()))
				}
				writeLimitError(w, fmt.Sprintf("Too many login attempts. Try again in %d minutes.",
					int(info.RetryAfter.Minutes())+1), int(info.RetryAfter.Seconds()))
				return
			}

			wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)

			if wrapper.statusCode >= 200 && wrapper.statusCode < 400 {
				limiter.RecordSuccess(clientIP)
			}
		})
	}
}

// ChatRateLimit throttles chat turns per user, guest session or IP.
func ChatRateLimit(limiter *ratelimit.KeyedLimiter, logger Logger, recorder LimitRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateKey(r)
			if !limiter.Allow(key) {
				logger.Warn("chat rate limited", "key", key)
				if recorder != nil {
					recorder.IncRateLimited("chat")
				}
				w.Header().Set("Retry-After", "1")
				writeLimitError(w, "You're sending messages too quickly. Take a breath and try again in a moment.", 1)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateKey(r *http.Request) string {
	caller := CallerFrom(r.Context())
	switch {
	case caller.Authenticated():
		return fmt.Sprintf("user:%d", caller.UserID)
	case caller.GuestSessionID != "":
		return "guest:" + caller.GuestSessionID
	default:
		return "ip:" + ratelimit.GetClientIP(r)
	}
}

func writeLimitError(w http.ResponseWriter, msg string, retryAfter int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":      msg,
		"retryAfter": retryAfter,
	})
}
