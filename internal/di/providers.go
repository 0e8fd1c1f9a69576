package di

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/themanaworld/api/internal/captcha"
	"github.com/themanaworld/api/internal/config"
	"github.com/themanaworld/api/internal/database"
	"github.com/themanaworld/api/internal/http/handler"
	"github.com/themanaworld/api/internal/legacy"
	"github.com/themanaworld/api/internal/mail"
	"github.com/themanaworld/api/internal/observability"
	"github.com/themanaworld/api/internal/ratelimit"
	"github.com/themanaworld/api/internal/repository"
	"github.com/themanaworld/api/internal/service"
	"github.com/themanaworld/api/internal/session"
)

func ProvideLogger(cfg *config.Config) *slog.Logger {
	return observability.NewLogger(cfg.LogLevel, cfg.LoggerWebhook)
}

func ProvideStores(cfg *config.Config) (*database.Stores, error) {
	stores, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.MigrateVault(stores.Vault); err != nil {
		return nil, err
	}
	return stores, nil
}

func ProvideVaultRepository(stores *database.Stores) repository.VaultRepository {
	return repository.NewVaultRepository(stores.Vault)
}

func ProvideLegacyRepository(stores *database.Stores) repository.LegacyRepository {
	return repository.NewLegacyRepository(stores.Legacy)
}

func ProvideEvolRepository(stores *database.Stores) repository.EvolRepository {
	return repository.NewEvolRepository(stores.Evol)
}

func ProvideSessionStore(cfg *config.Config) *session.Store {
	return session.NewStore(cfg.SessionBaseLifetime, cfg.SessionAuthedLifetime)
}

func ProvidePendingStore(cfg *config.Config) *session.PendingStore {
	return session.NewPendingStore(cfg.PendingLifetime)
}

func ProvideLimiter(logger *slog.Logger) *ratelimit.Limiter {
	return ratelimit.NewLimiter(logger)
}

// ProvideBudget picks the shared redis attempt budget when an address
// is configured, so multiple API instances count attempts together.
func ProvideBudget(cfg *config.Config) ratelimit.AttemptBudget {
	if cfg.RedisAddr == "" {
		return ratelimit.NewMemoryBudget()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return ratelimit.NewRedisBudget(client, "vault")
}

func ProvideMailer(cfg *config.Config, logger *slog.Logger) mail.Mailer {
	if cfg.IsDev() {
		return mail.NewDevMailer(logger)
	}
	return mail.NewSMTPMailer(cfg.SMTPAddr, cfg.MailFrom, logger)
}

func ProvideVerifier(cfg *config.Config, logger *slog.Logger) captcha.Verifier {
	if cfg.IsDev() {
		return captcha.StaticVerifier{OK: true}
	}
	return captcha.NewRecaptchaVerifier(cfg.RecaptchaSecret, logger)
}

func ProvideFlatfile(cfg *config.Config) service.FlatfileIndex {
	return legacy.NewFlatfile(cfg.FlatfileDir)
}

func ProvideGameAccountService(
	vault repository.VaultRepository,
	legacyRepo repository.LegacyRepository,
	evol repository.EvolRepository,
	logger *slog.Logger,
) *service.GameAccountService {
	return service.NewGameAccountService(vault, legacyRepo, evol, logger)
}

func ProvideClaimService(
	vault repository.VaultRepository,
	legacyRepo repository.LegacyRepository,
	flatfile service.FlatfileIndex,
	sessions *session.Store,
	accounts *service.GameAccountService,
	logger *slog.Logger,
) *service.ClaimService {
	return service.NewClaimService(vault, legacyRepo, flatfile, sessions, accounts, logger)
}

func ProvideMigrationService(
	vault repository.VaultRepository,
	legacyRepo repository.LegacyRepository,
	evol repository.EvolRepository,
	logger *slog.Logger,
) *service.MigrationService {
	return service.NewMigrationService(vault, legacyRepo, evol, logger)
}

func ProvideAuthService(
	cfg *config.Config,
	sessions *session.Store,
	vault repository.VaultRepository,
	accounts *service.GameAccountService,
	claims *service.ClaimService,
	mailer mail.Mailer,
	logger *slog.Logger,
) *service.AuthService {
	return service.NewAuthService(sessions, vault, accounts, claims, mailer, cfg.AuthURL, logger)
}

func ProvideIdentityService(
	cfg *config.Config,
	vault repository.VaultRepository,
	sessions *session.Store,
	pending *session.PendingStore,
	claims *service.ClaimService,
	mailer mail.Mailer,
	logger *slog.Logger,
) *service.IdentityService {
	return service.NewIdentityService(vault, sessions, pending, claims, mailer, cfg.IdentityURL, logger)
}

func ProvideVaultAccountService(vault repository.VaultRepository, logger *slog.Logger) *service.VaultAccountService {
	return service.NewVaultAccountService(vault, logger)
}

func ProvideEvolAccountService(
	vault repository.VaultRepository,
	evol repository.EvolRepository,
	logger *slog.Logger,
) *service.EvolAccountService {
	return service.NewEvolAccountService(vault, evol, logger)
}

func ProvideGate(
	sessions *session.Store,
	limiter *ratelimit.Limiter,
	budget ratelimit.AttemptBudget,
	logger *slog.Logger,
) *handler.Gate {
	return handler.NewGate(sessions, limiter, budget, logger)
}

func ProvideHandlers(
	auth *service.AuthService,
	identities *service.IdentityService,
	vaultAccounts *service.VaultAccountService,
	claims *service.ClaimService,
	migration *service.MigrationService,
	evolAccounts *service.EvolAccountService,
	sessions *session.Store,
	gate *handler.Gate,
	logger *slog.Logger,
) handler.Handlers {
	return handler.Handlers{
		Session:  handler.NewSessionHandler(auth, sessions, gate, logger),
		Identity: handler.NewIdentityHandler(identities, gate, logger),
		Account:  handler.NewAccountHandler(vaultAccounts, gate, logger),
		Legacy:   handler.NewLegacyHandler(claims, migration, gate, logger),
		Evol:     handler.NewEvolHandler(evolAccounts, gate, logger),
	}
}

func ProvideRouter(
	h handler.Handlers,
	limiter *ratelimit.Limiter,
	verifier captcha.Verifier,
	logger *slog.Logger,
) http.Handler {
	return handler.NewRouter(h, limiter, verifier, logger)
}

func ProvideServer(cfg *config.Config, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
