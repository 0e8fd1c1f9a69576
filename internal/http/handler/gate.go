package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/themanaworld/api/internal/domain"
	"github.com/themanaworld/api/internal/http/middleware"
	"github.com/themanaworld/api/internal/http/response"
	"github.com/themanaworld/api/internal/ratelimit"
	"github.com/themanaworld/api/internal/session"
	"github.com/themanaworld/api/internal/validate"
)

const (
	headerSession = "X-VAULT-SESSION"
	headerSecret  = "X-VAULT-TOKEN"
)

const bruteWindow = 15 * time.Minute

// Gate resolves and checks the session credentials every privileged
// endpoint requires. Rejections write the response themselves and
// apply the matching cooldown, so callers only ever branch on ok.
type Gate struct {
	sessions *session.Store
	limiter  *ratelimit.Limiter
	budget   ratelimit.AttemptBudget
	logger   *slog.Logger
}

func NewGate(sessions *session.Store, limiter *ratelimit.Limiter, budget ratelimit.AttemptBudget, logger *slog.Logger) *Gate {
	return &Gate{sessions: sessions, limiter: limiter, budget: budget, logger: logger}
}

// Require returns the authenticated session for the request, or
// writes the rejection and returns ok=false.
func (g *Gate) Require(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	ip := middleware.ClientIP(r)
	route := middleware.RouteKey(r)

	token := r.Header.Get(headerSession)
	if !validate.UUID(token) {
		response.Error(w, http.StatusBadRequest, "missing session key")
		g.logger.Warn("blocked an attempt to bypass authentication (missing key)",
			"endpoint", route, "ip", ip)
		g.limiter.Apply(ip, route, 5*time.Minute)
		return nil, false
	}

	sess := g.sessions.Get(token)
	if sess == nil {
		response.Error(w, http.StatusGone, "session expired")
		g.limiter.Apply(ip, route, 5*time.Second)
		return nil, false
	}

	secret := r.Header.Get(headerSecret)
	if !validate.UUID(secret) {
		response.Error(w, http.StatusBadRequest, "missing secret key")
		g.logger.Warn("blocked an attempt to bypass authentication (missing secret)",
			"endpoint", route, "ip", ip)
		g.limiter.Apply(ip, route, 5*time.Minute)
		return nil, false
	}
	if secret != sess.Secret {
		// same answer as an expired session, so a live token can't
		// be told apart from a dead one
		response.Error(w, http.StatusGone, "session expired")
		if g.Punish(r, "secret", 3, 5*time.Second) {
			g.logger.Warn("blocked an attempt to bypass authentication (wrong secret)",
				"endpoint", route, "ip", ip)
		}
		return nil, false
	}

	if !sess.Authenticated {
		// unreachable in theory, the secret only exists after
		// authentication
		response.Error(w, http.StatusUnauthorized, "not authenticated")
		g.logger.Warn("blocked an attempt to bypass authentication (not authed)",
			"endpoint", route, "ip", ip)
		g.limiter.Apply(ip, route, 5*time.Minute)
		return nil, false
	}

	if sess.StrictIPCheck && sess.IP != ip {
		response.Error(w, http.StatusForbidden, "ip address mismatch")
		g.logger.Warn("ip address mismatch", "vault", sess.Vault, "ip", ip)
		g.limiter.Apply(ip, route, 5*time.Minute)
		return nil, false
	}

	return sess, true
}

// Punish consumes one attempt from the caller's named budget and
// applies either the small cooldown or the hour-long lockout when the
// budget is spent. It reports whether the lockout was applied.
func (g *Gate) Punish(r *http.Request, kind string, max int, small time.Duration) bool {
	ip := middleware.ClientIP(r)
	route := middleware.RouteKey(r)

	remaining, err := g.budget.Consume(r.Context(), kind+":"+ip, max, bruteWindow)
	if err != nil {
		g.logger.Error("attempt budget unavailable", "error", err)
	}
	if remaining > 0 {
		g.limiter.Apply(ip, route, small)
		return false
	}
	g.limiter.Apply(ip, route, time.Hour)
	return true
}

// Cooldown applies a per-endpoint cooldown for the caller.
func (g *Gate) Cooldown(r *http.Request, d time.Duration) {
	g.limiter.Apply(middleware.ClientIP(r), middleware.RouteKey(r), d)
}
