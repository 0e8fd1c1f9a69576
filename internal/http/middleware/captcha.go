package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/themanaworld/api/internal/captcha"
	"github.com/themanaworld/api/internal/http/response"
	"github.com/themanaworld/api/internal/ratelimit"
)

const captchaHeader = "X-CAPTCHA-TOKEN"

// Captcha gates sensitive endpoints behind a challenge token. Failing
// or skipping the challenge earns a five minute cooldown, which also
// counts toward the threat level.
func Captcha(verifier captcha.Verifier, limiter *ratelimit.Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(captchaHeader)
			ip := ClientIP(r)

			if !captcha.TokenWellFormed(token) {
				response.Error(w, http.StatusForbidden, "no token sent")
				limiter.Apply(ip, RouteKey(r), 5*time.Minute)
				return
			}

			ok, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Warn("captcha verification unavailable", "error", err)
				response.Error(w, http.StatusForbidden, "captcha could not be verified")
				return
			}
			if !ok {
				response.Error(w, http.StatusForbidden, "captcha validation failed")
				limiter.Apply(ip, RouteKey(r), 5*time.Minute)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
