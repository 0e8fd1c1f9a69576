package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/themanaworld/api/internal/domain"
	"github.com/themanaworld/api/internal/legacy"
	"github.com/themanaworld/api/internal/mail"
	"github.com/themanaworld/api/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore() *session.Store {
	return session.NewStore(30*time.Minute, 6*time.Hour)
}

type stubVaultRepository struct {
	findLoginFn            func(id uint) (*domain.VaultLogin, error)
	createLoginFn          func(login *domain.VaultLogin) error
	updateLoginFn          func(id uint, fields map[string]any) error
	findIdentityByIDFn     func(id uint) (*domain.Identity, error)
	findIdentityByEmailFn  func(email string) (*domain.Identity, error)
	listIdentitiesFn       func(userID uint) ([]domain.Identity, error)
	createIdentityFn       func(ident *domain.Identity) error
	destroyIdentitiesFn    func(email string) error
	findLegacyClaimFn      func(accountID int) (*domain.ClaimedLegacyAccount, error)
	listLegacyClaimsFn     func(vaultID uint) ([]domain.ClaimedLegacyAccount, error)
	createLegacyClaimFn    func(claim *domain.ClaimedLegacyAccount) error
	deleteLegacyClaimFn    func(accountID int) error
	findGameClaimFn        func(accountID int) (*domain.ClaimedGameAccount, error)
	listGameClaimsFn       func(vaultID uint) ([]domain.ClaimedGameAccount, error)
	createGameClaimFn      func(claim *domain.ClaimedGameAccount) error
	deleteGameClaimFn      func(accountID int) error
	createMigrationLogFn   func(log *domain.MigrationLog) error
	createdLoginLogs       []domain.LoginLog
	createdIdentityLogs    []domain.IdentityLog
	createdAccountLogs     []domain.AccountLog
}

func (s *stubVaultRepository) FindLogin(id uint) (*domain.VaultLogin, error) {
	if s.findLoginFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findLoginFn(id)
}

func (s *stubVaultRepository) CreateLogin(login *domain.VaultLogin) error {
	if s.createLoginFn == nil {
		return errors.New("not implemented")
	}
	return s.createLoginFn(login)
}

func (s *stubVaultRepository) UpdateLogin(id uint, fields map[string]any) error {
	if s.updateLoginFn == nil {
		return errors.New("not implemented")
	}
	return s.updateLoginFn(id, fields)
}

func (s *stubVaultRepository) FindIdentityByID(id uint) (*domain.Identity, error) {
	if s.findIdentityByIDFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findIdentityByIDFn(id)
}

func (s *stubVaultRepository) FindIdentityByEmail(email string) (*domain.Identity, error) {
	if s.findIdentityByEmailFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findIdentityByEmailFn(email)
}

func (s *stubVaultRepository) ListIdentities(userID uint) ([]domain.Identity, error) {
	if s.listIdentitiesFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.listIdentitiesFn(userID)
}

func (s *stubVaultRepository) CreateIdentity(ident *domain.Identity) error {
	if s.createIdentityFn == nil {
		return errors.New("not implemented")
	}
	return s.createIdentityFn(ident)
}

func (s *stubVaultRepository) DestroyIdentitiesByEmail(email string) error {
	if s.destroyIdentitiesFn == nil {
		return errors.New("not implemented")
	}
	return s.destroyIdentitiesFn(email)
}

func (s *stubVaultRepository) FindLegacyClaim(accountID int) (*domain.ClaimedLegacyAccount, error) {
	if s.findLegacyClaimFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findLegacyClaimFn(accountID)
}

func (s *stubVaultRepository) ListLegacyClaims(vaultID uint) ([]domain.ClaimedLegacyAccount, error) {
	if s.listLegacyClaimsFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.listLegacyClaimsFn(vaultID)
}

func (s *stubVaultRepository) CreateLegacyClaim(claim *domain.ClaimedLegacyAccount) error {
	if s.createLegacyClaimFn == nil {
		return errors.New("not implemented")
	}
	return s.createLegacyClaimFn(claim)
}

func (s *stubVaultRepository) DeleteLegacyClaim(accountID int) error {
	if s.deleteLegacyClaimFn == nil {
		return errors.New("not implemented")
	}
	return s.deleteLegacyClaimFn(accountID)
}

func (s *stubVaultRepository) FindGameClaim(accountID int) (*domain.ClaimedGameAccount, error) {
	if s.findGameClaimFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findGameClaimFn(accountID)
}

func (s *stubVaultRepository) ListGameClaims(vaultID uint) ([]domain.ClaimedGameAccount, error) {
	if s.listGameClaimsFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.listGameClaimsFn(vaultID)
}

func (s *stubVaultRepository) CreateGameClaim(claim *domain.ClaimedGameAccount) error {
	if s.createGameClaimFn == nil {
		return errors.New("not implemented")
	}
	return s.createGameClaimFn(claim)
}

func (s *stubVaultRepository) DeleteGameClaim(accountID int) error {
	if s.deleteGameClaimFn == nil {
		return errors.New("not implemented")
	}
	return s.deleteGameClaimFn(accountID)
}

func (s *stubVaultRepository) CreateLoginLog(log *domain.LoginLog) error {
	s.createdLoginLogs = append(s.createdLoginLogs, *log)
	return nil
}

func (s *stubVaultRepository) CreateIdentityLog(log *domain.IdentityLog) error {
	s.createdIdentityLogs = append(s.createdIdentityLogs, *log)
	return nil
}

func (s *stubVaultRepository) CreateAccountLog(log *domain.AccountLog) error {
	s.createdAccountLogs = append(s.createdAccountLogs, *log)
	return nil
}

func (s *stubVaultRepository) CreateMigrationLog(log *domain.MigrationLog) error {
	if s.createMigrationLogFn == nil {
		return nil
	}
	return s.createMigrationLogFn(log)
}

type stubLegacyRepository struct {
	findLoginByIDFn       func(accountID int) (*domain.LegacyLogin, error)
	findLoginByUsernameFn func(username string) (*domain.LegacyLogin, error)
	findLoginsByEmailFn   func(email string, excludeIDs []int) ([]domain.LegacyLogin, error)
	updateLoginPasswordFn func(accountID int, hash string) error
	setLoginRevoltIDFn    func(accountID, revoltID int) error
	listCharsFn           func(accountID int) ([]domain.LegacyCharRow, error)
	setCharRevoltIDFn     func(charID, revoltID int) error
}

func (s *stubLegacyRepository) FindLoginByID(accountID int) (*domain.LegacyLogin, error) {
	if s.findLoginByIDFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findLoginByIDFn(accountID)
}

func (s *stubLegacyRepository) FindLoginByUsername(username string) (*domain.LegacyLogin, error) {
	if s.findLoginByUsernameFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findLoginByUsernameFn(username)
}

func (s *stubLegacyRepository) FindLoginsByEmail(email string, excludeIDs []int) ([]domain.LegacyLogin, error) {
	if s.findLoginsByEmailFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findLoginsByEmailFn(email, excludeIDs)
}

func (s *stubLegacyRepository) UpdateLoginPassword(accountID int, hash string) error {
	if s.updateLoginPasswordFn == nil {
		return errors.New("not implemented")
	}
	return s.updateLoginPasswordFn(accountID, hash)
}

func (s *stubLegacyRepository) SetLoginRevoltID(accountID, revoltID int) error {
	if s.setLoginRevoltIDFn == nil {
		return errors.New("not implemented")
	}
	return s.setLoginRevoltIDFn(accountID, revoltID)
}

func (s *stubLegacyRepository) ListChars(accountID int) ([]domain.LegacyCharRow, error) {
	if s.listCharsFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.listCharsFn(accountID)
}

func (s *stubLegacyRepository) SetCharRevoltID(charID, revoltID int) error {
	if s.setCharRevoltIDFn == nil {
		return errors.New("not implemented")
	}
	return s.setCharRevoltIDFn(charID, revoltID)
}

type stubEvolRepository struct {
	findLoginByIDFn       func(accountID int) (*domain.EvolLogin, error)
	findLoginByUsernameFn func(username string) (*domain.EvolLogin, error)
	createLoginFn         func(login *domain.EvolLogin) error
	updateLoginFn         func(accountID int, fields map[string]any) error
	listCharsFn           func(accountID int) ([]domain.EvolCharRow, error)
	createCharFn          func(char *domain.EvolCharRow) error
	deleteReservationFn   func(name string) error
}

func (s *stubEvolRepository) FindLoginByID(accountID int) (*domain.EvolLogin, error) {
	if s.findLoginByIDFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findLoginByIDFn(accountID)
}

func (s *stubEvolRepository) FindLoginByUsername(username string) (*domain.EvolLogin, error) {
	if s.findLoginByUsernameFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.findLoginByUsernameFn(username)
}

func (s *stubEvolRepository) CreateLogin(login *domain.EvolLogin) error {
	if s.createLoginFn == nil {
		return errors.New("not implemented")
	}
	return s.createLoginFn(login)
}

func (s *stubEvolRepository) UpdateLogin(accountID int, fields map[string]any) error {
	if s.updateLoginFn == nil {
		return errors.New("not implemented")
	}
	return s.updateLoginFn(accountID, fields)
}

func (s *stubEvolRepository) ListChars(accountID int) ([]domain.EvolCharRow, error) {
	if s.listCharsFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.listCharsFn(accountID)
}

func (s *stubEvolRepository) CreateChar(char *domain.EvolCharRow) error {
	if s.createCharFn == nil {
		return errors.New("not implemented")
	}
	return s.createCharFn(char)
}

func (s *stubEvolRepository) DeleteReservation(name string) error {
	if s.deleteReservationFn == nil {
		return errors.New("not implemented")
	}
	return s.deleteReservationFn(name)
}

type stubFlatfile struct {
	findAccountFn func(accountID int, name string) (*legacy.FlatfileAccount, error)
}

func (s *stubFlatfile) FindAccount(_ context.Context, accountID int, name string) (*legacy.FlatfileAccount, error) {
	if s.findAccountFn == nil {
		return nil, nil
	}
	return s.findAccountFn(accountID, name)
}

type recordingMailer struct {
	sent chan mail.Message
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(chan mail.Message, 8)}
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.sent <- msg
	return nil
}

func (m *recordingMailer) wait() (mail.Message, bool) {
	select {
	case msg := <-m.sent:
		return msg, true
	case <-time.After(2 * time.Second):
		return mail.Message{}, false
	}
}
