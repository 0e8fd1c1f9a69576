package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/themanaworld/api/internal/domain"
	"github.com/themanaworld/api/internal/repository"
)

// EvolAccountService creates and updates game accounts on the evol
// server on behalf of an authenticated vault account.
type EvolAccountService struct {
	vault  repository.VaultRepository
	evol   repository.EvolRepository
	logger *slog.Logger
}

func NewEvolAccountService(
	vault repository.VaultRepository,
	evol repository.EvolRepository,
	logger *slog.Logger,
) *EvolAccountService {
	return &EvolAccountService{vault: vault, evol: evol, logger: logger}
}

// Create makes a fresh evol login, claims it for the session's vault
// account and adds it to the session cache.
func (s *EvolAccountService) Create(sess *domain.Session, username, password, ip string) (*domain.EvolAccount, error) {
	// login.userid has no UNIQUE constraint on the evol server
	if _, err := s.evol.FindLoginByUsername(username); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, repository.ErrEvolAccountNotFound) {
		return nil, err
	}

	login := &domain.EvolLogin{
		Userid:   username,
		UserPass: password,
		Email:    fmt.Sprintf("%d@vault", sess.Vault),
	}
	if err := s.evol.CreateLogin(login); err != nil {
		return nil, err
	}

	if err := s.vault.CreateAccountLog(&domain.AccountLog{
		VaultID:     sess.Vault,
		AccountType: "EVOL",
		ActionType:  "CREATE",
		AccountID:   login.AccountID,
		IP:          ip,
	}); err != nil {
		s.logger.Error("failed to write account log", "error", err)
	}

	if err := s.vault.CreateGameClaim(&domain.ClaimedGameAccount{
		AccountID: login.AccountID,
		VaultID:   sess.Vault,
	}); err != nil {
		return nil, err
	}

	account := &domain.EvolAccount{
		GameAccount: domain.GameAccount{AccountID: login.AccountID, Name: login.Userid},
		Chars:       []*domain.EvolChar{},
	}
	sess.GameAccounts = append(sess.GameAccounts, account)

	s.logger.Info("created a new game account",
		"account_id", login.AccountID, "vault", sess.Vault, "ip", ip)
	return account, nil
}

// ChangeUsername renames an owned evol account.
func (s *EvolAccountService) ChangeUsername(sess *domain.Session, accountID int, username, ip string) (*domain.EvolAccount, error) {
	account := domain.FindEvol(sess.GameAccounts, accountID)
	if account == nil {
		return nil, ErrNotOwned
	}

	if _, err := s.evol.FindLoginByUsername(username); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, repository.ErrEvolAccountNotFound) {
		return nil, err
	}

	if err := s.evol.UpdateLogin(accountID, map[string]any{"userid": username}); err != nil {
		return nil, err
	}
	account.Name = username

	s.logger.Info("changed username of game account",
		"account_id", accountID, "vault", sess.Vault, "ip", ip)
	s.auditUpdate(sess.Vault, accountID, "username", ip)
	return account, nil
}

// ChangePassword sets a new password on an owned evol account.
func (s *EvolAccountService) ChangePassword(sess *domain.Session, accountID int, password, ip string) (*domain.EvolAccount, error) {
	account := domain.FindEvol(sess.GameAccounts, accountID)
	if account == nil {
		return nil, ErrNotOwned
	}

	if err := s.evol.UpdateLogin(accountID, map[string]any{"user_pass": password}); err != nil {
		return nil, err
	}

	s.logger.Info("changed password of game account",
		"account_id", accountID, "vault", sess.Vault, "ip", ip)
	s.auditUpdate(sess.Vault, accountID, "password", ip)
	return account, nil
}

func (s *EvolAccountService) auditUpdate(vaultID uint, accountID int, details, ip string) {
	if err := s.vault.CreateAccountLog(&domain.AccountLog{
		VaultID:     vaultID,
		AccountType: "EVOL",
		ActionType:  "UPDATE",
		Details:     details,
		AccountID:   accountID,
		IP:          ip,
	}); err != nil {
		s.logger.Error("failed to write account log", "error", err)
	}
}
