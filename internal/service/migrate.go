package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/themanaworld/api/internal/domain"
	"github.com/themanaworld/api/internal/repository"
)

// keyedMutex serializes work per legacy account id. The "already
// migrated" check and the subsequent writes span several store round
// trips, so two concurrent migrations of the same account could both
// pass the guard without it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int]*sync.Mutex)}
}

func (k *keyedMutex) lock(id int) func() {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// MigrationService ports a claimed legacy account and its characters
// onto the evol server, leaving cross-references on both sides.
type MigrationService struct {
	vault    repository.VaultRepository
	legacy   repository.LegacyRepository
	evol     repository.EvolRepository
	perAcct  *keyedMutex
	logger   *slog.Logger
	randHair func() (color, style int)
}

func NewMigrationService(
	vault repository.VaultRepository,
	legacyRepo repository.LegacyRepository,
	evol repository.EvolRepository,
	logger *slog.Logger,
) *MigrationService {
	return &MigrationService{
		vault:   vault,
		legacy:  legacyRepo,
		evol:    evol,
		perAcct: newKeyedMutex(),
		logger:  logger,
		randHair: func() (int, int) {
			// hair color [0,21), hair style [1,28]
			return rand.Intn(21), rand.Intn(28) + 1
		},
	}
}

// Migrate creates an evol login for the given claimed legacy account,
// then ports each character best-effort: a failure on one character is
// logged and skipped, never aborting the others.
func (s *MigrationService) Migrate(sess *domain.Session, accountID int, username, password, ip string) (*domain.EvolAccount, error) {
	unlock := s.perAcct.lock(accountID)
	defer unlock()

	// the cache is never stale: every operation that changes ownership
	// also updates it
	legacy := domain.FindLegacy(sess.LegacyAccounts, accountID)
	if legacy == nil {
		return nil, ErrNotOwned
	}
	if legacy.RevoltID != 0 {
		return nil, ErrAlreadyMigrated
	}

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

	if err := s.vault.CreateMigrationLog(&domain.MigrationLog{
		VaultID:   sess.Vault,
		LegacyID:  legacy.AccountID,
		AccountID: login.AccountID,
		IP:        ip,
	}); err != nil {
		s.logger.Error("failed to write migration log", "error", err)
	}

	if err := s.vault.CreateGameClaim(&domain.ClaimedGameAccount{
		AccountID: login.AccountID,
		VaultID:   sess.Vault,
	}); err != nil {
		return nil, err
	}

	account := &domain.EvolAccount{
		GameAccount: domain.GameAccount{AccountID: login.AccountID, Name: login.Userid},
		LegacyID:    legacy.AccountID,
		Chars:       []*domain.EvolChar{},
	}

	legacy.RevoltID = login.AccountID
	if err := s.legacy.SetLoginRevoltID(legacy.AccountID, login.AccountID); err != nil {
		s.logger.Error("failed to persist legacy cross-reference",
			"account_id", legacy.AccountID, "error", err)
	}

	for num, char := range legacy.Chars {
		if char.RevoltID != 0 {
			// already ported
			continue
		}

		color, style := s.randHair()
		row := &domain.EvolCharRow{
			AccountID: login.AccountID,
			CharNum:   num,
			Name:      char.Name,
			Hair:      style,
			HairColor: color,
			Sex:       mapGender(char.Gender),
		}
		if err := s.evol.CreateChar(row); err != nil {
			// a name collision here would mean the reservation table
			// is out of sync; skip the character, keep the rest
			s.logger.Error("failed to port character",
				"char", char.Name, "legacy_char_id", char.CharID, "error", err)
			continue
		}

		if err := s.evol.DeleteReservation(char.Name); err != nil {
			s.logger.Error("failed to release name reservation",
				"char", char.Name, "error", err)
		}

		account.Chars = append(account.Chars, &domain.EvolChar{
			Char: domain.Char{
				CharID: row.CharID,
				Name:   row.Name,
				Gender: row.Sex,
			},
			LegacyID: char.CharID,
		})

		char.RevoltID = row.CharID
		if err := s.legacy.SetCharRevoltID(char.CharID, row.CharID); err != nil {
			s.logger.Error("failed to persist character cross-reference",
				"char_id", char.CharID, "error", err)
		}
	}

	sess.GameAccounts = append(sess.GameAccounts, account)

	s.logger.Info("migrated legacy account",
		"legacy_id", legacy.AccountID, "account_id", login.AccountID,
		"vault", sess.Vault, "ip", ip)
	return account, nil
}

// mapGender folds the legacy gender set onto evol's. Anything that is
// not M or F is undefined there.
func mapGender(g string) string {
	switch g {
	case "M", "F":
		return g
	default:
		return "U"
	}
}
