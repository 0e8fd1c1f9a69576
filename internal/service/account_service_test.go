package service

import (
	"errors"
	"testing"

	"github.com/themanaworld/api/internal/domain"
	"github.com/themanaworld/api/internal/repository"
)

func TestUpdateSettingsRejectsForeignPrimary(t *testing.T) {
	svc := NewVaultAccountService(&stubVaultRepository{}, discardLogger())
	sess := authedSession(7)

	if err := svc.Update(sess, 99, false); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("Update: %v", err)
	}
	if sess.PrimaryIdentity != 3 {
		t.Errorf("primary changed to %d", sess.PrimaryIdentity)
	}
}

func TestUpdateSettingsWritesChangedFieldsOnly(t *testing.T) {
	var written map[string]any
	vault := &stubVaultRepository{
		updateLoginFn: func(id uint, fields map[string]any) error {
			if id != 7 {
				t.Errorf("update for vault %d", id)
			}
			written = fields
			return nil
		},
	}
	svc := NewVaultAccountService(vault, discardLogger())

	sess := authedSession(7)
	sess.AllowNonPrimary = false
	sess.Identities = append(sess.Identities, domain.IdentityView{ID: 4, Email: "alt@example.com"})

	if err := svc.Update(sess, 4, false); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(written) != 1 || written["primary_identity"] != uint(4) {
		t.Errorf("fields = %v", written)
	}
	if sess.PrimaryIdentity != 4 || sess.Identities[0].Primary || !sess.Identities[1].Primary {
		t.Errorf("session cache not updated: %+v", sess.Identities)
	}

	// no-op update must not touch the store
	written = nil
	if err := svc.Update(sess, 4, false); err != nil {
		t.Fatalf("no-op Update: %v", err)
	}
	if written != nil {
		t.Errorf("no-op wrote %v", written)
	}

	settings := svc.Settings(sess)
	if settings.PrimaryIdentity != 4 || settings.AllowNonPrimary {
		t.Errorf("settings = %+v", settings)
	}

	// flipping the flag alone writes just the flag
	if err := svc.Update(sess, 4, true); err != nil {
		t.Fatalf("flag Update: %v", err)
	}
	if len(written) != 1 || written["allow_non_primary"] != true {
		t.Errorf("fields = %v", written)
	}
}

func TestCreateEvolAccount(t *testing.T) {
	var claimed *domain.ClaimedGameAccount
	vault := &stubVaultRepository{
		createGameClaimFn: func(claim *domain.ClaimedGameAccount) error {
			claimed = claim
			return nil
		},
	}
	evol := &stubEvolRepository{
		findLoginByUsernameFn: func(string) (*domain.EvolLogin, error) {
			return nil, repository.ErrEvolAccountNotFound
		},
		createLoginFn: func(login *domain.EvolLogin) error {
			login.AccountID = 3000005
			return nil
		},
	}
	svc := NewEvolAccountService(vault, evol, discardLogger())

	sess := authedSession(7)
	account, err := svc.Create(sess, "newhero", "hunter2", "10.0.0.1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if account.AccountID != 3000005 || account.Name != "newhero" {
		t.Errorf("account = %+v", account)
	}
	if claimed == nil || claimed.AccountID != 3000005 || claimed.VaultID != 7 {
		t.Errorf("claim = %+v", claimed)
	}
	if len(sess.GameAccounts) != 1 {
		t.Errorf("session cache = %+v", sess.GameAccounts)
	}
	if len(vault.createdAccountLogs) != 1 || vault.createdAccountLogs[0].ActionType != "CREATE" {
		t.Errorf("account logs = %+v", vault.createdAccountLogs)
	}

	// the name is now in use
	evol.findLoginByUsernameFn = func(username string) (*domain.EvolLogin, error) {
		return &domain.EvolLogin{AccountID: 3000005, Userid: username}, nil
	}
	if _, err := svc.Create(sess, "newhero", "hunter2", "10.0.0.1"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("duplicate name: %v", err)
	}
}

func TestChangeUsernameRequiresOwnership(t *testing.T) {
	svc := NewEvolAccountService(&stubVaultRepository{}, &stubEvolRepository{}, discardLogger())

	sess := authedSession(7)
	if _, err := svc.ChangeUsername(sess, 3000001, "somebody", "10.0.0.1"); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("ChangeUsername: %v", err)
	}
}

func TestChangeUsernameAndPassword(t *testing.T) {
	var updates []map[string]any
	vault := &stubVaultRepository{}
	evol := &stubEvolRepository{
		findLoginByUsernameFn: func(string) (*domain.EvolLogin, error) {
			return nil, repository.ErrEvolAccountNotFound
		},
		updateLoginFn: func(accountID int, fields map[string]any) error {
			if accountID != 3000001 {
				t.Errorf("update for account %d", accountID)
			}
			updates = append(updates, fields)
			return nil
		},
	}
	svc := NewEvolAccountService(vault, evol, discardLogger())

	sess := authedSession(7)
	sess.GameAccounts = []*domain.EvolAccount{
		{GameAccount: domain.GameAccount{AccountID: 3000001, Name: "hero"}},
	}

	account, err := svc.ChangeUsername(sess, 3000001, "renamed", "10.0.0.1")
	if err != nil {
		t.Fatalf("ChangeUsername: %v", err)
	}
	if account.Name != "renamed" {
		t.Errorf("cached name = %q", account.Name)
	}

	if _, err := svc.ChangePassword(sess, 3000001, "hunter3", "10.0.0.1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if len(updates) != 2 || updates[0]["userid"] != "renamed" || updates[1]["user_pass"] != "hunter3" {
		t.Errorf("updates = %v", updates)
	}
	if len(vault.createdAccountLogs) != 2 ||
		vault.createdAccountLogs[0].Details != "username" ||
		vault.createdAccountLogs[1].Details != "password" {
		t.Errorf("account logs = %+v", vault.createdAccountLogs)
	}
}
