package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/themanaworld/api/internal/domain"
)

var (
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrVaultLoginNotFound = errors.New("vault login not found")
	ErrClaimNotFound      = errors.New("claim not found")
)

// VaultRepository covers the central identity store: vault logins,
// identities, claim rows and the audit logs.
type VaultRepository interface {
	FindLogin(id uint) (*domain.VaultLogin, error)
	CreateLogin(login *domain.VaultLogin) error
	UpdateLogin(id uint, fields map[string]any) error

	FindIdentityByID(id uint) (*domain.Identity, error)
	FindIdentityByEmail(email string) (*domain.Identity, error)
	ListIdentities(userID uint) ([]domain.Identity, error)
	CreateIdentity(ident *domain.Identity) error
	DestroyIdentitiesByEmail(email string) error

	FindLegacyClaim(accountID int) (*domain.ClaimedLegacyAccount, error)
	ListLegacyClaims(vaultID uint) ([]domain.ClaimedLegacyAccount, error)
	CreateLegacyClaim(claim *domain.ClaimedLegacyAccount) error
	DeleteLegacyClaim(accountID int) error

	FindGameClaim(accountID int) (*domain.ClaimedGameAccount, error)
	ListGameClaims(vaultID uint) ([]domain.ClaimedGameAccount, error)
	CreateGameClaim(claim *domain.ClaimedGameAccount) error
	DeleteGameClaim(accountID int) error

	CreateLoginLog(log *domain.LoginLog) error
	CreateIdentityLog(log *domain.IdentityLog) error
	CreateAccountLog(log *domain.AccountLog) error
	CreateMigrationLog(log *domain.MigrationLog) error
}

type GormVaultRepository struct{ db *gorm.DB }

func NewVaultRepository(db *gorm.DB) VaultRepository {
	return &GormVaultRepository{db: db}
}

func (r *GormVaultRepository) FindLogin(id uint) (*domain.VaultLogin, error) {
	var login domain.VaultLogin
	if err := r.db.First(&login, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVaultLoginNotFound
		}
		return nil, err
	}
	return &login, nil
}

func (r *GormVaultRepository) CreateLogin(login *domain.VaultLogin) error {
	return r.db.Create(login).Error
}

func (r *GormVaultRepository) UpdateLogin(id uint, fields map[string]any) error {
	res := r.db.Model(&domain.VaultLogin{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVaultLoginNotFound
	}
	return nil
}

func (r *GormVaultRepository) FindIdentityByID(id uint) (*domain.Identity, error) {
	var ident domain.Identity
	if err := r.db.First(&ident, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return &ident, nil
}

func (r *GormVaultRepository) FindIdentityByEmail(email string) (*domain.Identity, error) {
	var ident domain.Identity
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&ident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return &ident, nil
}

func (r *GormVaultRepository) ListIdentities(userID uint) ([]domain.Identity, error) {
	var idents []domain.Identity
	if err := r.db.Where("user_id = ?", userID).Order("id asc").Find(&idents).Error; err != nil {
		return nil, err
	}
	return idents, nil
}

func (r *GormVaultRepository) CreateIdentity(ident *domain.Identity) error {
	ident.Email = strings.ToLower(strings.TrimSpace(ident.Email))
	return r.db.Create(ident).Error
}

func (r *GormVaultRepository) DestroyIdentitiesByEmail(email string) error {
	return r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Delete(&domain.Identity{}).Error
}

func (r *GormVaultRepository) FindLegacyClaim(accountID int) (*domain.ClaimedLegacyAccount, error) {
	var claim domain.ClaimedLegacyAccount
	if err := r.db.First(&claim, "account_id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return &claim, nil
}

func (r *GormVaultRepository) ListLegacyClaims(vaultID uint) ([]domain.ClaimedLegacyAccount, error) {
	var claims []domain.ClaimedLegacyAccount
	if err := r.db.Where("vault_id = ?", vaultID).Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *GormVaultRepository) CreateLegacyClaim(claim *domain.ClaimedLegacyAccount) error {
	return r.db.Create(claim).Error
}

func (r *GormVaultRepository) DeleteLegacyClaim(accountID int) error {
	res := r.db.Delete(&domain.ClaimedLegacyAccount{}, "account_id = ?", accountID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClaimNotFound
	}
	return nil
}

func (r *GormVaultRepository) FindGameClaim(accountID int) (*domain.ClaimedGameAccount, error) {
	var claim domain.ClaimedGameAccount
	if err := r.db.First(&claim, "account_id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return &claim, nil
}

func (r *GormVaultRepository) ListGameClaims(vaultID uint) ([]domain.ClaimedGameAccount, error) {
	var claims []domain.ClaimedGameAccount
	if err := r.db.Where("vault_id = ?", vaultID).Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *GormVaultRepository) CreateGameClaim(claim *domain.ClaimedGameAccount) error {
	return r.db.Create(claim).Error
}

func (r *GormVaultRepository) DeleteGameClaim(accountID int) error {
	res := r.db.Delete(&domain.ClaimedGameAccount{}, "account_id = ?", accountID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClaimNotFound
	}
	return nil
}

func (r *GormVaultRepository) CreateLoginLog(log *domain.LoginLog) error {
	return r.db.Create(log).Error
}

func (r *GormVaultRepository) CreateIdentityLog(log *domain.IdentityLog) error {
	return r.db.Create(log).Error
}

func (r *GormVaultRepository) CreateAccountLog(log *domain.AccountLog) error {
	return r.db.Create(log).Error
}

func (r *GormVaultRepository) CreateMigrationLog(log *domain.MigrationLog) error {
	return r.db.Create(log).Error
}
