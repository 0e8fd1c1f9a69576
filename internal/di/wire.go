//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/themanaworld/api/internal/app"
	"github.com/themanaworld/api/internal/config"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		config.Load,
		ProvideLogger,
		ProvideStores,
		ProvideVaultRepository,
		ProvideLegacyRepository,
		ProvideEvolRepository,
		ProvideSessionStore,
		ProvidePendingStore,
		ProvideLimiter,
		ProvideBudget,
		ProvideMailer,
		ProvideVerifier,
		ProvideFlatfile,
		ProvideGameAccountService,
		ProvideClaimService,
		ProvideMigrationService,
		ProvideAuthService,
		ProvideIdentityService,
		ProvideVaultAccountService,
		ProvideEvolAccountService,
		ProvideGate,
		ProvideHandlers,
		ProvideRouter,
		ProvideServer,
		app.New,
	))
}
