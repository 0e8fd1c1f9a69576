package repository

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/themanaworld/api/internal/domain"
)

func newVaultDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	db := openSQLite(t, "vault")
	if err := db.AutoMigrate(
		&domain.VaultLogin{},
		&domain.Identity{},
		&domain.ClaimedLegacyAccount{},
		&domain.ClaimedGameAccount{},
		&domain.LoginLog{},
		&domain.IdentityLog{},
		&domain.AccountLog{},
		&domain.MigrationLog{},
	); err != nil {
		t.Fatalf("migrate vault db: %v", err)
	}
	return db
}

func newLegacyDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	db := openSQLite(t, "legacy")
	if err := db.AutoMigrate(&domain.LegacyLogin{}, &domain.LegacyCharRow{}); err != nil {
		t.Fatalf("migrate legacy db: %v", err)
	}
	return db
}

func newEvolDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	db := openSQLite(t, "evol")
	if err := db.AutoMigrate(&domain.EvolLogin{}, &domain.EvolCharRow{}, &domain.CharReservation{}); err != nil {
		t.Fatalf("migrate evol db: %v", err)
	}
	return db
}

func openSQLite(t *testing.T, store string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), store)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}
