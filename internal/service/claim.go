package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/themanaworld/api/internal/domain"
	"github.com/themanaworld/api/internal/legacy"
	"github.com/themanaworld/api/internal/repository"
	"github.com/themanaworld/api/internal/security"
	"github.com/themanaworld/api/internal/session"
)

// FlatfileIndex is the authoritative flat-file lookup behind the
// password fallback.
type FlatfileIndex interface {
	FindAccount(ctx context.Context, accountID int, name string) (*legacy.FlatfileAccount, error)
}

// ClaimService links pre-existing legacy game accounts to vault
// accounts, either by matching email or by proving the password.
type ClaimService struct {
	vault    repository.VaultRepository
	legacy   repository.LegacyRepository
	flatfile FlatfileIndex
	sessions *session.Store
	accounts *GameAccountService
	logger   *slog.Logger
}

func NewClaimService(
	vault repository.VaultRepository,
	legacyRepo repository.LegacyRepository,
	flatfile FlatfileIndex,
	sessions *session.Store,
	accounts *GameAccountService,
	logger *slog.Logger,
) *ClaimService {
	return &ClaimService{
		vault:    vault,
		legacy:   legacyRepo,
		flatfile: flatfile,
		sessions: sessions,
		accounts: accounts,
		logger:   logger,
	}
}

// ClaimByEmail links every unclaimed legacy account whose stored email
// matches. Runs after vault creation and after adding an identity.
// When the vault has a live session its cache picks up the new links
// without another round trip.
func (s *ClaimService) ClaimByEmail(email string, vaultID uint, sess *domain.Session, ip string) error {
	// a@a.com is the placeholder the game server writes for "no email"
	if len(email) < 5 || email == "a@a.com" {
		return nil
	}

	if sess == nil {
		sess = s.sessions.FindAuthenticated(vaultID)
	}

	claimed, err := s.vault.ListLegacyClaims(vaultID)
	if err != nil {
		return err
	}
	exclude := make([]int, 0, len(claimed))
	for _, c := range claimed {
		exclude = append(exclude, c.AccountID)
	}

	matches, err := s.legacy.FindLoginsByEmail(email, exclude)
	if err != nil {
		return err
	}

	for _, login := range matches {
		if already, err := s.vault.FindLegacyClaim(login.AccountID); err == nil && already != nil {
			// claimed by someone else in the meantime
			continue
		}
		if err := s.vault.CreateLegacyClaim(&domain.ClaimedLegacyAccount{
			AccountID: login.AccountID,
			VaultID:   vaultID,
		}); err != nil {
			return err
		}

		if err := s.vault.CreateAccountLog(&domain.AccountLog{
			VaultID:     vaultID,
			AccountType: "LEGACY",
			ActionType:  "LINK",
			AccountID:   login.AccountID,
			IP:          ip,
		}); err != nil {
			s.logger.Error("failed to write account log", "error", err)
		}

		if sess != nil {
			account, err := s.accounts.buildLegacyAccount(&login)
			if err != nil {
				return err
			}
			sess.LegacyAccounts = append(sess.LegacyAccounts, account)
		}

		s.logger.Info("linked legacy account by email",
			"account_id", login.AccountID, "vault", vaultID, "ip", ip)
	}
	return nil
}

// ClaimByPassword proves ownership of a legacy account with its
// password. The SQL hash can be stale, so on mismatch the flat file is
// consulted; a flat-file hit rewrites the SQL hash on the way through.
func (s *ClaimService) ClaimByPassword(ctx context.Context, sess *domain.Session, username, password, ip string) (*domain.LegacyAccount, error) {
	login, err := s.legacy.FindLoginByUsername(username)
	if errors.Is(err, repository.ErrLegacyAccountNotFound) {
		return nil, ErrLoginFailed
	}
	if err != nil {
		return nil, err
	}

	if !security.VerifyLegacyPassword(login.UserPass, password) {
		account, err := s.flatfile.FindAccount(ctx, login.AccountID, login.Userid)
		if err != nil || account == nil || !security.VerifyLegacyPassword(account.Password, password) {
			return nil, ErrLoginFailed
		}
		// the flat file is authoritative, refresh the SQL copy
		s.logger.Info("updating stale SQL password from flat file",
			"account_id", login.AccountID)
		fresh := security.HashLegacyPassword(password)
		if err := s.legacy.UpdateLoginPassword(login.AccountID, fresh); err != nil {
			s.logger.Error("failed to write through flat-file password",
				"account_id", login.AccountID, "error", err)
		}
	}

	if _, err := s.vault.FindLegacyClaim(login.AccountID); err == nil {
		return nil, ErrAlreadyClaimed
	} else if !errors.Is(err, repository.ErrClaimNotFound) {
		return nil, err
	}

	if err := s.vault.CreateLegacyClaim(&domain.ClaimedLegacyAccount{
		AccountID: login.AccountID,
		VaultID:   sess.Vault,
	}); err != nil {
		return nil, err
	}

	if err := s.vault.CreateAccountLog(&domain.AccountLog{
		VaultID:     sess.Vault,
		AccountType: "LEGACY",
		ActionType:  "LINK",
		AccountID:   login.AccountID,
		IP:          ip,
	}); err != nil {
		s.logger.Error("failed to write account log", "error", err)
	}

	account, err := s.accounts.buildLegacyAccount(login)
	if err != nil {
		return nil, err
	}
	sess.LegacyAccounts = append(sess.LegacyAccounts, account)

	s.logger.Info("linked legacy account by password",
		"account_id", login.AccountID, "vault", sess.Vault, "ip", ip)
	return account, nil
}
