package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	// warn-and-above log records are mirrored to this chat webhook
	LoggerWebhook string

	// vault is the central identity store (postgres); legacy and evol
	// are the two game-server stores (mariadb)
	VaultDatabaseURL string
	LegacyDSN        string
	EvolDSN          string

	// optional shared brute-force counters
	RedisAddr string

	MailFrom string
	SMTPAddr string

	RecaptchaSecret string

	// magic-link prefixes; the token is appended verbatim
	AuthURL     string
	IdentityURL string

	SessionBaseLifetime   time.Duration
	SessionAuthedLifetime time.Duration
	PendingLifetime       time.Duration

	// legacy server collaborators
	FlatfileDir   string
	TMWAAdminPath string
	TMWAAdminCwd  string
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LoggerWebhook:    os.Getenv("LOGGER_WEBHOOK"),
		VaultDatabaseURL: os.Getenv("VAULT_DATABASE_URL"),
		LegacyDSN:        os.Getenv("LEGACY_DATABASE_DSN"),
		EvolDSN:          os.Getenv("EVOL_DATABASE_DSN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		MailFrom:         getEnv("MAILER_FROM", "vault@themanaworld.org"),
		SMTPAddr:         getEnv("SMTP_ADDR", "localhost:25"),
		RecaptchaSecret:  os.Getenv("RECAPTCHA_SECRET"),
		AuthURL:          getEnv("VAULT_AUTH_URL", "https://www.themanaworld.org/vault/auth/"),
		IdentityURL:      getEnv("VAULT_IDENTITY_URL", "https://www.themanaworld.org/vault/identity/"),
		FlatfileDir:      getEnv("TMWA_FLATFILE_DIR", "."),
		TMWAAdminPath:    getEnv("TMWA_ADMIN_PATH", "tmwa-admin"),
		TMWAAdminCwd:     os.Getenv("TMWA_ADMIN_CWD"),
	}

	var err error
	if cfg.SessionBaseLifetime, err = getEnvDuration("SESSION_BASE_LIFETIME", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionAuthedLifetime, err = getEnvDuration("SESSION_AUTHED_LIFETIME", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PendingLifetime, err = getEnvDuration("IDENTITY_PENDING_LIFETIME", 30*time.Minute); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDev reports whether the API runs in development mode: magic links
// are logged instead of emailed and captcha checks are skipped.
func (c *Config) IsDev() bool { return c.Env == "development" }

func (c *Config) Validate() error {
	var errs []string
	if !c.IsDev() {
		if c.VaultDatabaseURL == "" {
			errs = append(errs, "VAULT_DATABASE_URL is required")
		}
		if c.LegacyDSN == "" {
			errs = append(errs, "LEGACY_DATABASE_DSN is required")
		}
		if c.EvolDSN == "" {
			errs = append(errs, "EVOL_DATABASE_DSN is required")
		}
		if c.RecaptchaSecret == "" {
			errs = append(errs, "RECAPTCHA_SECRET is required")
		}
	}
	if c.SessionBaseLifetime <= 0 || c.SessionBaseLifetime > c.SessionAuthedLifetime {
		errs = append(errs, "SESSION_BASE_LIFETIME must be positive and not exceed SESSION_AUTHED_LIFETIME")
	}
	if c.PendingLifetime <= 0 {
		errs = append(errs, "IDENTITY_PENDING_LIFETIME must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
