package domain

import "time"

// Audit rows for the vault store. These are append-only; writes are
// fire-and-forget from the caller's point of view.

type LoginLog struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uint      `gorm:"index;not null" json:"userId"`
	Action string    `gorm:"size:16;not null" json:"action"` // CREATE, LOGIN, LOGOUT
	IP     string    `gorm:"size:64;not null" json:"ip"`
	Date   time.Time `gorm:"autoCreateTime" json:"date"`
}

func (LoginLog) TableName() string { return "login_log" }

type IdentityLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"userId"`
	IdentityID uint      `gorm:"index;not null" json:"identityId"`
	Action     string    `gorm:"size:16;not null" json:"action"` // ADD, REMOVE
	IP         string    `gorm:"size:64;not null" json:"ip"`
	Date       time.Time `gorm:"autoCreateTime" json:"date"`
}

func (IdentityLog) TableName() string { return "identity_log" }

type AccountLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VaultID     uint      `gorm:"index;not null" json:"vaultId"`
	AccountType string    `gorm:"size:16;not null" json:"accountType"` // LEGACY, EVOL
	ActionType  string    `gorm:"size:16;not null" json:"actionType"`  // LINK, CREATE, UPDATE
	Details     string    `gorm:"size:64" json:"details"`
	AccountID   int       `gorm:"index;not null" json:"accountId"`
	IP          string    `gorm:"size:64;not null" json:"ip"`
	Date        time.Time `gorm:"autoCreateTime" json:"date"`
}

func (AccountLog) TableName() string { return "account_log" }

type MigrationLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VaultID   uint      `gorm:"index;not null" json:"vaultId"`
	LegacyID  int       `gorm:"index;not null" json:"legacyId"`
	AccountID int       `gorm:"index;not null" json:"accountId"`
	IP        string    `gorm:"size:64;not null" json:"ip"`
	Date      time.Time `gorm:"autoCreateTime" json:"date"`
}

func (MigrationLog) TableName() string { return "migration_log" }
