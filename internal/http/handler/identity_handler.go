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
	"github.com/themanaworld/api/internal/validate"
)

// IdentityHandler lists and adds the email identities of an account.
// Adding one is two-phase: the request dispatches a link, and the
// link's token comes back on an unauthenticated confirmation call.
type IdentityHandler struct {
	identities *service.IdentityService
	gate       *Gate
	logger     *slog.Logger
}

func NewIdentityHandler(identities *service.IdentityService, gate *Gate, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{identities: identities, gate: gate, logger: logger}
}

// List handles GET.
func (h *IdentityHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.gate.Require(w, r)
	if !ok {
		return
	}

	views, err := h.identities.List(sess, middleware.ClientIP(r))
	if err != nil {
		h.logger.Error("identity listing failed", "vault", sess.Vault, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	response.SuccessData(w, http.StatusOK, map[string]any{"identities": views})
	h.gate.Cooldown(r, time.Second)
}

// Add handles POST. With no session key and a bare link token it is
// the confirmation step; with a full session it starts a new request.
func (h *IdentityHandler) Add(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(headerSession) == "" && r.Header.Get(headerSecret) != "" {
		h.confirm(w, r)
		return
	}
	h.request(w, r)
}

func (h *IdentityHandler) confirm(w http.ResponseWriter, r *http.Request) {
	ip := middleware.ClientIP(r)

	linkToken := r.Header.Get(headerSecret)
	if !validate.UUID(linkToken) {
		response.Error(w, http.StatusBadRequest, "missing secret")
		h.gate.Cooldown(r, 5*time.Second)
		return
	}

	email, ok := h.email(w, r)
	if !ok {
		return
	}

	ident, err := h.identities.ConfirmAdd(linkToken, email, ip)
	switch {
	case errors.Is(err, service.ErrLinkExpired):
		response.Error(w, http.StatusGone, "token has expired")
		if h.gate.Punish(r, "identity", 3, 15*time.Second) {
			h.logger.Warn("identity validation request flood", "ip", ip)
		}
	case err != nil:
		h.logger.Error("identity confirmation failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
	default:
		response.SuccessData(w, http.StatusCreated, map[string]any{"identity": ident})
		h.gate.Cooldown(r, time.Minute)
	}
}

func (h *IdentityHandler) request(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.gate.Require(w, r)
	if !ok {
		return
	}
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	err := h.identities.RequestAdd(sess, email, middleware.ClientIP(r))
	switch {
	case errors.Is(err, service.ErrIdentityPending):
		response.Error(w, http.StatusTooEarly, "already pending")
		h.gate.Cooldown(r, 10*time.Minute)
	case errors.Is(err, service.ErrIdentityTaken):
		response.Error(w, http.StatusConflict, "already assigned")
		h.gate.Cooldown(r, 5*time.Second)
	case errors.Is(err, service.ErrTooManyIdentities):
		response.Error(w, http.StatusRequestedRangeNotSatisfiable, "too many identities")
		h.gate.Cooldown(r, 30*time.Second)
	case err != nil:
		h.logger.Error("identity request failed", "vault", sess.Vault, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
	default:
		response.Success(w, http.StatusOK)
		h.gate.Cooldown(r, 5*time.Second)
	}
}

func (h *IdentityHandler) email(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validate.Email(req.Email) {
		response.Error(w, http.StatusBadRequest, "invalid email address")
		h.logger.Warn("blocked an attempt to bypass authentication (invalid email)",
			"endpoint", middleware.RouteKey(r), "ip", middleware.ClientIP(r))
		h.gate.Cooldown(r, 5*time.Minute)
		return "", false
	}
	return validate.NormalizeEmail(req.Email), true
}
