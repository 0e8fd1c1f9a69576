package domain

import "time"

// LegacyLogin mirrors the legacy (tmwa) server's SQL copy of its
// flat-file login records. UserPass carries the eAthena
// "!salt$hash" format; the flat file stays authoritative when the
// two disagree.
type LegacyLogin struct {
	AccountID  int       `gorm:"primaryKey;column:account_id" json:"accountId"`
	RevoltID   int       `gorm:"index" json:"revoltId"`
	Userid     string    `gorm:"size:23;index;not null" json:"userid"`
	UserPass   string    `gorm:"size:32;not null" json:"-"`
	Email      string    `gorm:"size:39" json:"-"`
	LastLogin  time.Time `json:"-"`
	LoginCount uint      `gorm:"not null;default:0" json:"-"`
	State      uint      `gorm:"not null;default:0" json:"-"`
}

func (LegacyLogin) TableName() string { return "login" }

// LegacyCharRow is the SQL copy of a legacy character.
type LegacyCharRow struct {
	CharID    int    `gorm:"primaryKey;column:char_id" json:"charId"`
	AccountID int    `gorm:"index;not null" json:"accountId"`
	RevoltID  int    `gorm:"index" json:"revoltId"`
	Name      string `gorm:"size:30;not null" json:"name"`
	BaseLevel int    `gorm:"not null;default:1" json:"baseLevel"`
	Sex       string `gorm:"size:1;not null;default:N" json:"sex"`
}

func (LegacyCharRow) TableName() string { return "char" }
