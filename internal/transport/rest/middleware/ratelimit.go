package middleware

import (
	"log"
	"net"
	"net/http"
	"strings"

	"decryptrace/internal/cache"
)

// RateLimit rejects requests over the limiter's budget with 429.
// Authenticated teams are keyed by name, everyone else by client IP.
// A limiter failure lets the request through.
func RateLimit(limiter cache.RateLimiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + clientKey(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Printf("rate limiter unavailable, allowing %s: %v", key, err)
			} else if !allowed {
				w.Header().Set("Retry-After", "60")
				http.Error(w, `{"error":"too many requests"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if team := GetTeamName(r.Context()); team != "" {
		return "team:" + team
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
