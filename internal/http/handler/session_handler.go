package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/themanaworld/api/internal/http/middleware"
	"github.com/themanaworld/api/internal/http/response"
	"github.com/themanaworld/api/internal/service"
	"github.com/themanaworld/api/internal/session"
	"github.com/themanaworld/api/internal/validate"
)

// SessionHandler drives the passwordless login flow: request a magic
// link, confirm it, log out.
type SessionHandler struct {
	auth     *service.AuthService
	sessions *session.Store
	gate     *Gate
	logger   *slog.Logger
}

func NewSessionHandler(auth *service.AuthService, sessions *session.Store, gate *Gate, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{auth: auth, sessions: sessions, gate: gate, logger: logger}
}

// Request handles PUT: dispatch a login or account-creation link.
func (h *SessionHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email"`
		Confirm bool   `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validate.Email(req.Email) {
		response.Error(w, http.StatusBadRequest, "invalid email address")
		h.gate.Cooldown(r, time.Second)
		return
	}
	email := validate.NormalizeEmail(req.Email)
	ip := middleware.ClientIP(r)

	err := h.auth.RequestSession(email, ip, req.Confirm)
	switch {
	case errors.Is(err, service.ErrUnknownIdentity):
		// don't disclose whether the address is registered
		response.Pending(w)
		h.gate.Cooldown(r, time.Second)
	case errors.Is(err, service.ErrDanglingAccount):
		response.Error(w, http.StatusConflict, "data conflict")
		h.gate.Cooldown(r, 5*time.Minute)
	case errors.Is(err, service.ErrNonPrimaryDisabled):
		response.Error(w, http.StatusLocked, "non-primary login is disabled")
		h.gate.Cooldown(r, 5*time.Second)
	case err != nil:
		h.logger.Error("session request failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
	default:
		response.Success(w, http.StatusOK)
		h.gate.Cooldown(r, time.Minute)
	}
}

// Confirm handles GET: authenticate a pending session through its
// emailed token. The response discloses the rotated token and the
// secret exactly once.
func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ip := middleware.ClientIP(r)
	route := middleware.RouteKey(r)

	token := r.Header.Get(headerSession)
	if !validate.UUID(token) {
		response.Error(w, http.StatusBadRequest, "missing session key")
		h.logger.Warn("blocked an attempt to bypass authentication (missing key)",
			"endpoint", route, "ip", ip)
		h.gate.Cooldown(r, 5*time.Minute)
		return
	}

	sess := h.sessions.Get(token)
	if sess == nil {
		// don't log every miss, this can get spammy; the budget
		// shuts down sustained token guessing
		response.JSON(w, http.StatusGone, map[string]any{
			"status": "error",
			"error":  "session expired",
			"session": map[string]any{
				"expires":  0,
				"identity": nil,
			},
		})
		if h.gate.Punish(r, "session", 3, time.Second) {
			h.logger.Warn("blocked session token guessing",
				"endpoint", route, "ip", ip)
		}
		return
	}

	if sess.StrictIPCheck && sess.IP != ip {
		response.Error(w, http.StatusForbidden, "ip address mismatch")
		h.logger.Warn("ip address mismatch", "vault", sess.Vault, "ip", ip)
		h.gate.Cooldown(r, 5*time.Minute)
		return
	}

	if sess.Authenticated {
		// already authed: idempotent echo, but only to the holder of
		// the secret
		if r.Header.Get(headerSecret) != sess.Secret {
			response.Error(w, http.StatusGone, "session expired")
			if h.gate.Punish(r, "secret", 3, 5*time.Second) {
				h.logger.Warn("blocked an attempt to bypass authentication (wrong secret)",
					"endpoint", route, "ip", ip)
			}
			return
		}
		response.SuccessData(w, http.StatusOK, map[string]any{"session": sess})
		h.gate.Cooldown(r, 500*time.Millisecond)
		return
	}

	newToken, secret, err := h.auth.FinishLogin(token, sess, ip)
	switch {
	case errors.Is(err, service.ErrIllegalIdentity):
		h.sessions.Delete(token)
		response.Error(w, http.StatusForbidden, "illegal identity")
		h.gate.Cooldown(r, 5*time.Minute)
	case err != nil:
		h.logger.Error("session confirmation failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
	default:
		response.SuccessData(w, http.StatusOK, map[string]any{
			"session": sess,
			"token":   newToken,
			"secret":  secret,
		})
		h.gate.Cooldown(r, time.Minute)
	}
}

// Logout handles DELETE. A token that is already gone still logs out
// successfully.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ip := middleware.ClientIP(r)

	token := r.Header.Get(headerSession)
	if !validate.UUID(token) {
		response.Error(w, http.StatusBadRequest, "missing session key")
		h.logger.Warn("blocked an attempt to bypass authentication (missing key)",
			"endpoint", middleware.RouteKey(r), "ip", ip)
		h.gate.Cooldown(r, 5*time.Minute)
		return
	}

	// cooldown no matter what
	h.gate.Cooldown(r, 10*time.Second)
	h.auth.Logout(token, ip)
	response.Success(w, http.StatusOK)
}
