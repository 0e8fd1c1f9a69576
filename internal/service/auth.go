package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/themanaworld/api/internal/domain"
	"github.com/themanaworld/api/internal/mail"
	"github.com/themanaworld/api/internal/repository"
	"github.com/themanaworld/api/internal/session"
)

// AuthService runs the passwordless login state machine: request a
// session by email, confirm it through the emailed link, log out.
type AuthService struct {
	sessions *session.Store
	vault    repository.VaultRepository
	accounts *GameAccountService
	claims   *ClaimService
	mailer   mail.Mailer
	authURL  string
	logger   *slog.Logger
}

func NewAuthService(
	sessions *session.Store,
	vault repository.VaultRepository,
	accounts *GameAccountService,
	claims *ClaimService,
	mailer mail.Mailer,
	authURL string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		sessions: sessions,
		vault:    vault,
		accounts: accounts,
		claims:   claims,
		mailer:   mailer,
		authURL:  authURL,
		logger:   logger,
	}
}

// RequestSession starts a login for the given email. For an unknown
// address it only proceeds when confirm is set, so callers cannot use
// the endpoint to probe which emails are registered. On success the
// one-time link has been dispatched and the pending session stored.
func (s *AuthService) RequestSession(email, ip string, confirm bool) error {
	ident, err := s.vault.FindIdentityByEmail(email)
	if errors.Is(err, repository.ErrIdentityNotFound) {
		if !confirm {
			return ErrUnknownIdentity
		}
		// account creation
		token := s.sessions.NewToken()
		s.sessions.Set(token, domain.NewSession(ip, email))
		s.logger.Info("starting account creation", "ip", ip)
		s.sendLoginLink(email, token, "The Mana World account creation",
			"You are receiving this email because someone (you?) has requested to link your email address "+
				"to a new Vault account.\nIf you did not initiate this process, please ignore this email.\n\n"+
				"To confirm, use this link:\n")
		return nil
	}
	if err != nil {
		return err
	}

	account, err := s.vault.FindLogin(ident.UserID)
	if errors.Is(err, repository.ErrVaultLoginNotFound) {
		// the account was deleted but not its identities; self-heal
		if err := s.vault.DestroyIdentitiesByEmail(email); err != nil {
			s.logger.Error("failed to destroy dangling identities", "error", err)
		}
		return ErrDanglingAccount
	}
	if err != nil {
		return err
	}

	if ident.ID != account.PrimaryIdentity && !account.AllowNonPrimary {
		return ErrNonPrimaryDisabled
	}

	sess := domain.NewSession(ip, email)
	sess.Vault = account.ID
	sess.Identity = ident.ID
	sess.PrimaryIdentity = account.PrimaryIdentity
	sess.AllowNonPrimary = account.AllowNonPrimary
	sess.StrictIPCheck = account.StrictIPCheck

	token := s.sessions.NewToken()
	s.sessions.Set(token, sess)

	s.logger.Info("starting authentication", "identity", ident.ID, "ip", ip)
	s.sendLoginLink(email, token, "TMW Vault login",
		"Here is your login link:\n")
	return nil
}

// FinishLogin authenticates a pending session that presented the right
// link token. The token is rotated to defeat fixation and the one-time
// secret is generated here; neither is ever disclosed again.
func (s *AuthService) FinishLogin(token string, sess *domain.Session, ip string) (newToken, secret string, err error) {
	if sess.Vault == 0 && sess.Identity == 0 {
		if err := s.createVaultAccount(sess, ip); err != nil {
			return "", "", err
		}
	} else {
		if sess.Identity != sess.PrimaryIdentity && !sess.AllowNonPrimary {
			// should not be reachable, the request step refuses these
			return "", "", ErrIllegalIdentity
		}
		// single active session per vault account
		if n := s.sessions.InvalidateOthers(sess.Vault, token); n > 0 {
			s.logger.Info("invalidated concurrent sessions",
				"count", n, "vault", sess.Vault)
		}
		s.logger.Info("accepted login", "vault", sess.Vault, "ip", ip)
	}

	if err := s.vault.CreateLoginLog(&domain.LoginLog{
		UserID: sess.Vault,
		Action: "LOGIN",
		IP:     ip,
	}); err != nil {
		s.logger.Error("failed to write login log", "error", err)
	}

	if sess.Identity != sess.PrimaryIdentity {
		s.notifyPrimary(sess)
	}

	s.hydrateCaches(sess, ip)

	sess.Authenticated = true
	secret = s.sessions.NewToken()
	sess.Secret = secret

	newToken = s.sessions.NewToken()
	s.sessions.Delete(token)
	s.sessions.Set(newToken, sess)
	return newToken, secret, nil
}

// Logout drops the session. Idempotent: a token that is already gone
// is still a successful logout.
func (s *AuthService) Logout(token, ip string) {
	sess := s.sessions.Peek(token)
	if sess == nil {
		return
	}
	if err := s.vault.CreateLoginLog(&domain.LoginLog{
		UserID: sess.Vault,
		Action: "LOGOUT",
		IP:     ip,
	}); err != nil {
		s.logger.Error("failed to write login log", "error", err)
	}
	s.sessions.Delete(token)
	s.logger.Info("invalidated session (logout)", "vault", sess.Vault, "ip", ip)
}

// createVaultAccount handles a first-ever login: vault login row,
// first identity, primary designation, then the claim-by-email sweep.
func (s *AuthService) createVaultAccount(sess *domain.Session, ip string) error {
	account := &domain.VaultLogin{AllowNonPrimary: true}
	if err := s.vault.CreateLogin(account); err != nil {
		return err
	}
	if err := s.vault.CreateLoginLog(&domain.LoginLog{
		UserID: account.ID,
		Action: "CREATE",
		IP:     ip,
	}); err != nil {
		s.logger.Error("failed to write login log", "error", err)
	}

	ident := &domain.Identity{UserID: account.ID, Email: sess.Email}
	if err := s.vault.CreateIdentity(ident); err != nil {
		return err
	}
	if err := s.vault.CreateIdentityLog(&domain.IdentityLog{
		UserID:     account.ID,
		IdentityID: ident.ID,
		Action:     "ADD",
		IP:         ip,
	}); err != nil {
		s.logger.Error("failed to write identity log", "error", err)
	}

	if err := s.vault.UpdateLogin(account.ID, map[string]any{
		"primary_identity": ident.ID,
	}); err != nil {
		return err
	}

	s.logger.Info("created a new vault account", "vault", account.ID, "ip", ip)

	sess.Vault = account.ID
	sess.Identity = ident.ID
	sess.PrimaryIdentity = ident.ID
	sess.AllowNonPrimary = true
	sess.Identities = []domain.IdentityView{{
		ID:      ident.ID,
		Email:   ident.Email,
		Added:   ident.AddedDate,
		Primary: true,
	}}

	if err := s.claims.ClaimByEmail(sess.Email, account.ID, sess, ip); err != nil {
		s.logger.Error("claim-by-email sweep failed", "vault", account.ID, "error", err)
	}
	return nil
}

// hydrateCaches pre-fetches both game account lists so the list
// endpoints answer from memory. Failures degrade to lazy fetching.
func (s *AuthService) hydrateCaches(sess *domain.Session, ip string) {
	if len(sess.LegacyAccounts) == 0 {
		if _, err := s.accounts.HydrateLegacy(sess, ip); err != nil {
			s.logger.Error("failed to prefetch legacy accounts",
				"vault", sess.Vault, "error", err)
		}
	}
	if _, err := s.accounts.HydrateEvol(sess, ip); err != nil {
		s.logger.Error("failed to prefetch evol accounts",
			"vault", sess.Vault, "error", err)
	}
	if len(sess.Identities) == 0 {
		idents, err := s.vault.ListIdentities(sess.Vault)
		if err != nil {
			s.logger.Error("failed to prefetch identities",
				"vault", sess.Vault, "error", err)
			return
		}
		sess.Identities = identityViews(idents, sess.PrimaryIdentity)
	}
}

// notifyPrimary warns the primary mailbox about a login through a
// non-primary identity.
func (s *AuthService) notifyPrimary(sess *domain.Session) {
	primary, err := s.vault.FindIdentityByID(sess.PrimaryIdentity)
	if err != nil {
		s.logger.Error("failed to resolve primary identity",
			"vault", sess.Vault, "error", err)
		return
	}
	s.sendMail(primary.Email, "The Mana World security notice",
		"Someone has logged in to your Vault account using an email address that "+
			"is not your primary address. If this wasn't you, please contact us immediately.\n\n"+
			"To stop receiving login notices, use your primary email address when logging in.")
}

func (s *AuthService) sendLoginLink(email, token, subject, intro string) {
	s.sendMail(email, subject, intro+s.authURL+token+"\n\n"+
		"TMW staff members will never ask for your login link. Please do not "+
		"share it with anyone.")
}

// sendMail is fire-and-forget: delivery failures are logged and never
// block or fail the request that triggered them.
func (s *AuthService) sendMail(to, subject, body string) {
	go func() {
		if err := s.mailer.Send(context.Background(), mail.Message{
			To:      to,
			Subject: subject,
			Body:    body,
		}); err != nil {
			s.logger.Error("failed to send email", "to", to, "error", err)
		}
	}()
}

func identityViews(idents []domain.Identity, primary uint) []domain.IdentityView {
	views := make([]domain.IdentityView, 0, len(idents))
	for _, ident := range idents {
		views = append(views, domain.IdentityView{
			ID:      ident.ID,
			Email:   ident.Email,
			Added:   ident.AddedDate,
			Primary: ident.ID == primary,
		})
	}
	return views
}
