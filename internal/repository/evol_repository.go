package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/themanaworld/api/internal/domain"
)

var ErrEvolAccountNotFound = errors.New("evol account not found")

// EvolRepository manages login and character rows on the new game
// server, plus the character name reservations released during
// migration.
type EvolRepository interface {
	FindLoginByID(accountID int) (*domain.EvolLogin, error)
	FindLoginByUsername(username string) (*domain.EvolLogin, error)
	CreateLogin(login *domain.EvolLogin) error
	UpdateLogin(accountID int, fields map[string]any) error

	ListChars(accountID int) ([]domain.EvolCharRow, error)
	CreateChar(char *domain.EvolCharRow) error

	DeleteReservation(name string) error
}

type GormEvolRepository struct{ db *gorm.DB }

func NewEvolRepository(db *gorm.DB) EvolRepository {
	return &GormEvolRepository{db: db}
}

func (r *GormEvolRepository) FindLoginByID(accountID int) (*domain.EvolLogin, error) {
	var login domain.EvolLogin
	if err := r.db.First(&login, "account_id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvolAccountNotFound
		}
		return nil, err
	}
	return &login, nil
}

func (r *GormEvolRepository) FindLoginByUsername(username string) (*domain.EvolLogin, error) {
	var login domain.EvolLogin
	if err := r.db.First(&login, "userid = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvolAccountNotFound
		}
		return nil, err
	}
	return &login, nil
}

func (r *GormEvolRepository) CreateLogin(login *domain.EvolLogin) error {
	return r.db.Create(login).Error
}

func (r *GormEvolRepository) UpdateLogin(accountID int, fields map[string]any) error {
	res := r.db.Model(&domain.EvolLogin{}).Where("account_id = ?", accountID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEvolAccountNotFound
	}
	return nil
}

func (r *GormEvolRepository) ListChars(accountID int) ([]domain.EvolCharRow, error) {
	var chars []domain.EvolCharRow
	if err := r.db.Where("account_id = ?", accountID).Order("char_num asc").Find(&chars).Error; err != nil {
		return nil, err
	}
	return chars, nil
}

func (r *GormEvolRepository) CreateChar(char *domain.EvolCharRow) error {
	return r.db.Create(char).Error
}

func (r *GormEvolRepository) DeleteReservation(name string) error {
	return r.db.Where("name = ?", name).Delete(&domain.CharReservation{}).Error
}
