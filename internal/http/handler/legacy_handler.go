package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/themanaworld/api/internal/http/middleware"
	"github.com/themanaworld/api/internal/http/response"
	"github.com/themanaworld/api/internal/service"
	"github.com/themanaworld/api/internal/validate"
)

// LegacyHandler lists, claims and migrates legacy game accounts.
type LegacyHandler struct {
	claims    *service.ClaimService
	migration *service.MigrationService
	gate      *Gate
	logger    *slog.Logger
}

func NewLegacyHandler(claims *service.ClaimService, migration *service.MigrationService, gate *Gate, logger *slog.Logger) *LegacyHandler {
	return &LegacyHandler{claims: claims, migration: migration, gate: gate, logger: logger}
}

// List handles GET. The list is served from the session cache, which
// authentication pre-filled.
func (h *LegacyHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.gate.Require(w, r)
	if !ok {
		return
	}
	response.SuccessData(w, http.StatusOK, map[string]any{
		"accounts": sess.LegacyAccounts,
	})
	h.gate.Cooldown(r, time.Second)
}

// Claim handles POST: take ownership of a legacy account by proving
// its password.
func (h *LegacyHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		!validate.Username(req.Username) || !validate.LegacyPassword(req.Password) {
		response.Error(w, http.StatusBadRequest, "invalid format")
		h.gate.Cooldown(r, 5*time.Second)
		return
	}

	sess, ok := h.gate.Require(w, r)
	if !ok {
		return
	}
	ip := middleware.ClientIP(r)

	account, err := h.claims.ClaimByPassword(r.Context(), sess, req.Username, req.Password, ip)
	switch {
	case errors.Is(err, service.ErrLoginFailed):
		response.Error(w, http.StatusNotFound, "not found")
		if h.gate.Punish(r, "legacy", 5, 3*time.Second) {
			h.logger.Warn("legacy login request flood", "vault", sess.Vault, "ip", ip)
		} else {
			h.logger.Warn("failed legacy account login", "vault", sess.Vault, "ip", ip)
		}
	case errors.Is(err, service.ErrAlreadyClaimed):
		response.Error(w, http.StatusConflict, "already assigned")
		h.logger.Warn("blocked an attempt to link an already-linked account",
			"vault", sess.Vault, "ip", ip)
		h.gate.Cooldown(r, 5*time.Minute)
	case err != nil:
		h.logger.Error("legacy claim failed", "vault", sess.Vault, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
	default:
		response.SuccessData(w, http.StatusOK, map[string]any{"account": account})
		h.gate.Cooldown(r, 8*time.Second)
	}
}

// Migrate handles PATCH: port a claimed legacy account and its
// characters onto the evol server.
func (h *LegacyHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID int    `json:"accountId"`
		Username  string `json:"username"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		!validate.GameID(strconv.Itoa(req.AccountID)) ||
		!validate.Username(req.Username) || !validate.EvolPassword(req.Password) {
		response.Error(w, http.StatusBadRequest, "invalid format")
		h.gate.Cooldown(r, 5*time.Second)
		return
	}

	sess, ok := h.gate.Require(w, r)
	if !ok {
		return
	}
	ip := middleware.ClientIP(r)

	account, err := h.migration.Migrate(sess, req.AccountID, req.Username, req.Password, ip)
	switch {
	case errors.Is(err, service.ErrNotOwned):
		response.Error(w, http.StatusNotFound, "not found")
		h.logger.Warn("blocked an attempt to migrate a foreign account",
			"vault", sess.Vault, "ip", ip)
		h.gate.Cooldown(r, 5*time.Minute)
	case errors.Is(err, service.ErrAlreadyMigrated):
		response.Error(w, http.StatusConflict, "already migrated")
		h.gate.Cooldown(r, 5*time.Minute)
	case errors.Is(err, service.ErrNameTaken):
		response.Error(w, http.StatusConflict, "already exists")
		h.gate.Cooldown(r, 2*time.Second)
	case err != nil:
		h.logger.Error("migration failed", "vault", sess.Vault, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
	default:
		response.SuccessData(w, http.StatusOK, map[string]any{
			"session": sess,
			"account": account,
		})
		h.gate.Cooldown(r, 15*time.Second)
	}
}
