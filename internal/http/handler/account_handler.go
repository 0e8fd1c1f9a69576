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
)

// AccountHandler exposes the vault account settings.
type AccountHandler struct {
	accounts *service.VaultAccountService
	gate     *Gate
	logger   *slog.Logger
}

func NewAccountHandler(accounts *service.VaultAccountService, gate *Gate, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, gate: gate, logger: logger}
}

// Settings handles GET.
func (h *AccountHandler) Settings(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.gate.Require(w, r)
	if !ok {
		return
	}
	response.SuccessData(w, http.StatusOK, map[string]any{
		"data": h.accounts.Settings(sess),
	})
	h.gate.Cooldown(r, time.Second)
}

// Update handles PATCH: change the primary identity and the
// non-primary login policy.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Primary *uint `json:"primary"`
		Allow   *bool `json:"allow"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Primary == nil || req.Allow == nil {
		response.Error(w, http.StatusBadRequest, "invalid format")
		h.gate.Cooldown(r, 5*time.Second)
		return
	}

	sess, ok := h.gate.Require(w, r)
	if !ok {
		return
	}

	err := h.accounts.Update(sess, *req.Primary, *req.Allow)
	switch {
	case errors.Is(err, service.ErrNotOwned):
		response.Error(w, http.StatusNotFound, "not owned by you")
		h.logger.Warn("blocked an attempt to claim a foreign identity",
			"vault", sess.Vault, "ip", middleware.ClientIP(r))
		h.gate.Cooldown(r, 5*time.Minute)
	case err != nil:
		h.logger.Error("account update failed", "vault", sess.Vault, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
	default:
		response.Success(w, http.StatusOK)
		h.gate.Cooldown(r, time.Second)
	}
}
