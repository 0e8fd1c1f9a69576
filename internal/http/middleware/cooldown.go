// Package middleware holds the request gates shared by the routers.
package middleware

import (
	"net"
	"net/http"

	"github.com/themanaworld/api/internal/http/response"
	"github.com/themanaworld/api/internal/ratelimit"
)

// ClientIP extracts the caller address. chi's RealIP middleware has
// already folded X-Forwarded-For into RemoteAddr by the time this runs.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// RouteKey scopes cooldowns per endpoint so a cooldown on one
// operation does not lock the caller out of the others.
func RouteKey(r *http.Request) string {
	return r.Method + " " + r.URL.Path
}

// Cooldown rejects callers that are still cooling down from an earlier
// request on the same endpoint, and drops banned callers outright.
func Cooldown(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Check(ClientIP(r), RouteKey(r))
			if d.Banned {
				response.Banned(w)
				return
			}
			if !d.Allowed {
				response.RateLimited(w, d.RetryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
