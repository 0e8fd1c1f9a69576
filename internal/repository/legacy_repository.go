package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/themanaworld/api/internal/domain"
)

var ErrLegacyAccountNotFound = errors.New("legacy account not found")

// LegacyRepository reads and patches the legacy game server's SQL
// mirror. The flat file stays authoritative for passwords; the only
// writes we ever do here are the write-through hash refresh and the
// migration cross-references.
type LegacyRepository interface {
	FindLoginByID(accountID int) (*domain.LegacyLogin, error)
	FindLoginByUsername(username string) (*domain.LegacyLogin, error)
	FindLoginsByEmail(email string, excludeIDs []int) ([]domain.LegacyLogin, error)
	UpdateLoginPassword(accountID int, hash string) error
	SetLoginRevoltID(accountID, revoltID int) error

	ListChars(accountID int) ([]domain.LegacyCharRow, error)
	SetCharRevoltID(charID, revoltID int) error
}

type GormLegacyRepository struct{ db *gorm.DB }

func NewLegacyRepository(db *gorm.DB) LegacyRepository {
	return &GormLegacyRepository{db: db}
}

func (r *GormLegacyRepository) FindLoginByID(accountID int) (*domain.LegacyLogin, error) {
	var login domain.LegacyLogin
	if err := r.db.First(&login, "account_id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLegacyAccountNotFound
		}
		return nil, err
	}
	return &login, nil
}

func (r *GormLegacyRepository) FindLoginByUsername(username string) (*domain.LegacyLogin, error) {
	var login domain.LegacyLogin
	if err := r.db.First(&login, "userid = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLegacyAccountNotFound
		}
		return nil, err
	}
	return &login, nil
}

func (r *GormLegacyRepository) FindLoginsByEmail(email string, excludeIDs []int) ([]domain.LegacyLogin, error) {
	var logins []domain.LegacyLogin
	q := r.db.Where("email = ?", email)
	if len(excludeIDs) > 0 {
		q = q.Where("account_id NOT IN ?", excludeIDs)
	}
	if err := q.Find(&logins).Error; err != nil {
		return nil, err
	}
	return logins, nil
}

func (r *GormLegacyRepository) UpdateLoginPassword(accountID int, hash string) error {
	res := r.db.Model(&domain.LegacyLogin{}).Where("account_id = ?", accountID).
		Update("user_pass", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLegacyAccountNotFound
	}
	return nil
}

func (r *GormLegacyRepository) SetLoginRevoltID(accountID, revoltID int) error {
	res := r.db.Model(&domain.LegacyLogin{}).Where("account_id = ?", accountID).
		Update("revolt_id", revoltID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLegacyAccountNotFound
	}
	return nil
}

func (r *GormLegacyRepository) ListChars(accountID int) ([]domain.LegacyCharRow, error) {
	var chars []domain.LegacyCharRow
	if err := r.db.Where("account_id = ?", accountID).Order("char_id asc").Find(&chars).Error; err != nil {
		return nil, err
	}
	return chars, nil
}

func (r *GormLegacyRepository) SetCharRevoltID(charID, revoltID int) error {
	return r.db.Model(&domain.LegacyCharRow{}).Where("char_id = ?", charID).
		Update("revolt_id", revoltID).Error
}
