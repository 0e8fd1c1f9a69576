package domain

import "time"

// VaultLogin is the central vault account row. PrimaryIdentity is
// nullable in SQL because the account and its first identity are
// created in two steps; the auth flow self-heals a dangling value.
type VaultLogin struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PrimaryIdentity uint      `gorm:"index" json:"primaryIdentity"`
	AllowNonPrimary bool      `gorm:"not null;default:true" json:"allowNonPrimary"`
	StrictIPCheck   bool      `gorm:"not null;default:false" json:"strictIpCheck"`
	CreationDate    time.Time `gorm:"autoCreateTime" json:"-"`
	State           string    `gorm:"size:16;not null;default:OK" json:"-"`
}

func (VaultLogin) TableName() string { return "login" }

// Identity is a verified email address bound to a vault account.
// Emails are globally unique across identities.
type Identity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Email     string    `gorm:"size:320;uniqueIndex;not null" json:"email"`
	AddedDate time.Time `gorm:"autoCreateTime" json:"added"`
}

func (Identity) TableName() string { return "identity" }

// IdentityView is the session-cached shape of an Identity.
type IdentityView struct {
	ID      uint      `json:"id"`
	Email   string    `json:"email"`
	Added   time.Time `json:"added"`
	Primary bool      `json:"primary"`
}

// ClaimedLegacyAccount links a legacy game account to the vault
// account that claimed it. At most one claimant per game account,
// enforced by existence check before insert.
type ClaimedLegacyAccount struct {
	AccountID int  `gorm:"primaryKey;autoIncrement:false" json:"accountId"`
	VaultID   uint `gorm:"index;not null" json:"vaultId"`
}

func (ClaimedLegacyAccount) TableName() string { return "claimed_legacy_accounts" }

// ClaimedGameAccount is the evol-side counterpart of
// ClaimedLegacyAccount.
type ClaimedGameAccount struct {
	AccountID int  `gorm:"primaryKey;autoIncrement:false" json:"accountId"`
	VaultID   uint `gorm:"index;not null" json:"vaultId"`
}

func (ClaimedGameAccount) TableName() string { return "claimed_game_accounts" }
