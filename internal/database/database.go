package database

import (
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/themanaworld/api/internal/config"
	"github.com/themanaworld/api/internal/domain"
)

// Stores bundles the three logical databases. The vault store is
// ours; the legacy and evol stores belong to the game servers and are
// never migrated from here.
type Stores struct {
	Vault  *gorm.DB
	Legacy *gorm.DB
	Evol   *gorm.DB
}

func Open(cfg *config.Config) (*Stores, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	vault, err := gorm.Open(postgres.Open(cfg.VaultDatabaseURL), gormCfg)
	if err != nil {
		return nil, err
	}
	legacy, err := gorm.Open(mysql.Open(cfg.LegacyDSN), gormCfg)
	if err != nil {
		return nil, err
	}
	evol, err := gorm.Open(mysql.Open(cfg.EvolDSN), gormCfg)
	if err != nil {
		return nil, err
	}
	return &Stores{Vault: vault, Legacy: legacy, Evol: evol}, nil
}

// MigrateVault creates or updates the vault-side tables. Only the
// vault schema is under our control.
func MigrateVault(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.VaultLogin{},
		&domain.Identity{},
		&domain.ClaimedLegacyAccount{},
		&domain.ClaimedGameAccount{},
		&domain.LoginLog{},
		&domain.IdentityLog{},
		&domain.AccountLog{},
		&domain.MigrationLog{},
	)
}
