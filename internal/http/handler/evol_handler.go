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

// EvolHandler lists, creates and updates evol game accounts.
type EvolHandler struct {
	accounts *service.EvolAccountService
	gate     *Gate
	logger   *slog.Logger
}

func NewEvolHandler(accounts *service.EvolAccountService, gate *Gate, logger *slog.Logger) *EvolHandler {
	return &EvolHandler{accounts: accounts, gate: gate, logger: logger}
}

// List handles GET, served from the session cache.
func (h *EvolHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.gate.Require(w, r)
	if !ok {
		return
	}
	response.SuccessData(w, http.StatusOK, map[string]any{
		"accounts": sess.GameAccounts,
	})
	h.gate.Cooldown(r, time.Second)
}

// Create handles POST: a fresh evol login owned by the session's
// vault account.
func (h *EvolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		!validate.Username(req.Username) || !validate.EvolPassword(req.Password) {
		response.Error(w, http.StatusBadRequest, "invalid format")
		h.gate.Cooldown(r, 5*time.Second)
		return
	}

	sess, ok := h.gate.Require(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.Create(sess, req.Username, req.Password, middleware.ClientIP(r))
	switch {
	case errors.Is(err, service.ErrNameTaken):
		response.Error(w, http.StatusConflict, "already exists")
		h.gate.Cooldown(r, time.Second)
	case err != nil:
		h.logger.Error("evol account creation failed", "vault", sess.Vault, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
	default:
		response.SuccessData(w, http.StatusOK, map[string]any{"account": account})
		h.gate.Cooldown(r, 5*time.Second)
	}
}

// Update handles PATCH: change the username or the password of an
// owned evol account.
func (h *EvolHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID int     `json:"accountId"`
		Username  *string `json:"username"`
		Password  *string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		!validate.GameID(strconv.Itoa(req.AccountID)) ||
		!((req.Username != nil && validate.Username(*req.Username)) ||
			(req.Password != nil && validate.EvolPassword(*req.Password))) {
		response.Error(w, http.StatusBadRequest, "invalid format")
		h.gate.Cooldown(r, 5*time.Second)
		return
	}

	sess, ok := h.gate.Require(w, r)
	if !ok {
		return
	}
	ip := middleware.ClientIP(r)

	var err error
	var account any
	if req.Username != nil {
		account, err = h.accounts.ChangeUsername(sess, req.AccountID, *req.Username, ip)
	} else {
		account, err = h.accounts.ChangePassword(sess, req.AccountID, *req.Password, ip)
	}
	switch {
	case errors.Is(err, service.ErrNotOwned):
		response.Error(w, http.StatusNotFound, "account not found")
		h.logger.Warn("blocked an attempt to modify a foreign game account",
			"vault", sess.Vault, "ip", ip)
		h.gate.Cooldown(r, 5*time.Minute)
	case errors.Is(err, service.ErrNameTaken):
		response.Error(w, http.StatusConflict, "already exists")
		h.gate.Cooldown(r, 500*time.Millisecond)
	case err != nil:
		h.logger.Error("evol account update failed", "vault", sess.Vault, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
	default:
		response.SuccessData(w, http.StatusOK, map[string]any{"account": account})
		h.gate.Cooldown(r, 5*time.Second)
	}
}
