package domain

// EvolLogin is a login row on the new (evol) game server. UserPass is
// whatever the game server expects; hashing it here would break the
// server's own login path.
type EvolLogin struct {
	AccountID int    `gorm:"primaryKey;autoIncrement;column:account_id" json:"accountId"`
	Userid    string `gorm:"size:23;index;not null" json:"userid"`
	UserPass  string `gorm:"size:32;not null" json:"-"`
	Sex       string `gorm:"size:1;not null;default:M" json:"-"`
	Email     string `gorm:"size:39;not null" json:"-"`
}

func (EvolLogin) TableName() string { return "login" }

// EvolCharRow is a character row on the evol server. Name carries a
// UNIQUE constraint there.
type EvolCharRow struct {
	CharID    int    `gorm:"primaryKey;column:char_id" json:"charId"`
	AccountID int    `gorm:"index;not null" json:"accountId"`
	CharNum   int    `gorm:"not null;default:0" json:"charNum"`
	Name      string `gorm:"size:30;uniqueIndex;not null" json:"name"`
	Hair      int    `gorm:"not null;default:1" json:"hair"`
	HairColor int    `gorm:"not null;default:0" json:"hairColor"`
	BaseLevel int    `gorm:"not null;default:1" json:"baseLevel"`
	Sex       string `gorm:"size:1;not null;default:U" json:"sex"`
}

func (EvolCharRow) TableName() string { return "char" }

// CharReservation holds a reserved character name, released when the
// matching character is migrated.
type CharReservation struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:30;uniqueIndex;not null" json:"name"`
}

func (CharReservation) TableName() string { return "char_reservation" }
