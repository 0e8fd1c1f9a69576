package service

import (
	"log/slog"

	"github.com/themanaworld/api/internal/domain"
	"github.com/themanaworld/api/internal/repository"
)

// AccountSettings is the client-visible slice of a vault login row.
type AccountSettings struct {
	PrimaryIdentity uint `json:"primaryIdentity"`
	AllowNonPrimary bool `json:"allowNonPrimary"`
}

// VaultAccountService reads and updates the vault account settings.
type VaultAccountService struct {
	vault  repository.VaultRepository
	logger *slog.Logger
}

func NewVaultAccountService(vault repository.VaultRepository, logger *slog.Logger) *VaultAccountService {
	return &VaultAccountService{vault: vault, logger: logger}
}

func (s *VaultAccountService) Settings(sess *domain.Session) AccountSettings {
	return AccountSettings{
		PrimaryIdentity: sess.PrimaryIdentity,
		AllowNonPrimary: sess.AllowNonPrimary,
	}
}

// Update changes the primary identity and the non-primary login
// policy. The new primary must be one of the session's own
// identities.
func (s *VaultAccountService) Update(sess *domain.Session, primary uint, allow bool) error {
	fields := map[string]any{}

	if sess.PrimaryIdentity != primary {
		owned := false
		for _, ident := range sess.Identities {
			if ident.ID == primary {
				owned = true
				break
			}
		}
		if !owned {
			return ErrNotOwned
		}
		fields["primary_identity"] = primary
	}
	if sess.AllowNonPrimary != allow {
		fields["allow_non_primary"] = allow
	}

	if len(fields) > 0 {
		if err := s.vault.UpdateLogin(sess.Vault, fields); err != nil {
			return err
		}
	}

	sess.PrimaryIdentity = primary
	sess.AllowNonPrimary = allow
	for i := range sess.Identities {
		sess.Identities[i].Primary = sess.Identities[i].ID == primary
	}
	return nil
}
