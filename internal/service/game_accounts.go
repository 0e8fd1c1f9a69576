package service

import (
	"errors"
	"log/slog"

	"github.com/themanaworld/api/internal/domain"
	"github.com/themanaworld/api/internal/repository"
)

// GameAccountService hydrates the per-session caches of claimed game
// accounts from the claim tables and the two game stores.
type GameAccountService struct {
	vault  repository.VaultRepository
	legacy repository.LegacyRepository
	evol   repository.EvolRepository
	logger *slog.Logger
}

func NewGameAccountService(
	vault repository.VaultRepository,
	legacy repository.LegacyRepository,
	evol repository.EvolRepository,
	logger *slog.Logger,
) *GameAccountService {
	return &GameAccountService{vault: vault, legacy: legacy, evol: evol, logger: logger}
}

// HydrateLegacy rebuilds the session's legacy account cache. Claim
// rows whose game account no longer exists are deleted on the way, so
// the cache self-heals after account deletions.
func (s *GameAccountService) HydrateLegacy(sess *domain.Session, ip string) ([]*domain.LegacyAccount, error) {
	claims, err := s.vault.ListLegacyClaims(sess.Vault)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.LegacyAccount, 0, len(claims))
	for _, claim := range claims {
		login, err := s.legacy.FindLoginByID(claim.AccountID)
		if errors.Is(err, repository.ErrLegacyAccountNotFound) {
			s.logger.Info("unlinking deleted legacy account",
				"account_id", claim.AccountID, "vault", sess.Vault, "ip", ip)
			if err := s.vault.DeleteLegacyClaim(claim.AccountID); err != nil {
				s.logger.Error("failed to unlink deleted legacy account",
					"account_id", claim.AccountID, "error", err)
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		account, err := s.buildLegacyAccount(login)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	sess.LegacyAccounts = accounts
	return accounts, nil
}

func (s *GameAccountService) buildLegacyAccount(login *domain.LegacyLogin) (*domain.LegacyAccount, error) {
	account := &domain.LegacyAccount{
		GameAccount: domain.GameAccount{AccountID: login.AccountID, Name: login.Userid},
		RevoltID:    login.RevoltID,
		Chars:       []*domain.LegacyChar{},
	}

	chars, err := s.legacy.ListChars(login.AccountID)
	if err != nil {
		return nil, err
	}
	for _, row := range chars {
		account.Chars = append(account.Chars, &domain.LegacyChar{
			Char: domain.Char{
				CharID:    row.CharID,
				Name:      row.Name,
				BaseLevel: row.BaseLevel,
				Gender:    row.Sex,
			},
			RevoltID: row.RevoltID,
		})
	}
	return account, nil
}

// HydrateEvol rebuilds the session's evol account cache and resolves
// migration cross-references against the legacy cache, which must be
// hydrated first for the links to appear.
func (s *GameAccountService) HydrateEvol(sess *domain.Session, ip string) ([]*domain.EvolAccount, error) {
	claims, err := s.vault.ListGameClaims(sess.Vault)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.EvolAccount, 0, len(claims))
	for _, claim := range claims {
		login, err := s.evol.FindLoginByID(claim.AccountID)
		if errors.Is(err, repository.ErrEvolAccountNotFound) {
			s.logger.Info("unlinking deleted evol account",
				"account_id", claim.AccountID, "vault", sess.Vault, "ip", ip)
			if err := s.vault.DeleteGameClaim(claim.AccountID); err != nil {
				s.logger.Error("failed to unlink deleted evol account",
					"account_id", claim.AccountID, "error", err)
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		account := &domain.EvolAccount{
			GameAccount: domain.GameAccount{AccountID: login.AccountID, Name: login.Userid},
			Chars:       []*domain.EvolChar{},
		}

		for _, legacy := range sess.LegacyAccounts {
			if legacy.RevoltID == account.AccountID {
				account.LegacyID = legacy.AccountID
				break
			}
		}

		chars, err := s.evol.ListChars(login.AccountID)
		if err != nil {
			return nil, err
		}
		for _, row := range chars {
			char := &domain.EvolChar{
				Char: domain.Char{
					CharID:    row.CharID,
					Name:      row.Name,
					BaseLevel: row.BaseLevel,
					Gender:    row.Sex,
				},
			}
			char.LegacyID = findPortedChar(sess.LegacyAccounts, row.CharID)
			account.Chars = append(account.Chars, char)
		}

		accounts = append(accounts, account)
	}

	sess.GameAccounts = accounts
	return accounts, nil
}

func findPortedChar(accounts []*domain.LegacyAccount, evolCharID int) int {
	for _, acc := range accounts {
		for _, char := range acc.Chars {
			if char.RevoltID == evolCharID {
				return char.CharID
			}
		}
	}
	return 0
}
