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

// MaxIdentities is the limit of email identities per vault account.
const MaxIdentities = 20

// IdentityService manages the email identities of a vault account.
// Adding one is two-phase: a request emails a link token held in a
// store separate from sessions, confirmation creates the row.
type IdentityService struct {
	vault       repository.VaultRepository
	sessions    *session.Store
	pending     *session.PendingStore
	claims      *ClaimService
	mailer      mail.Mailer
	identityURL string
	logger      *slog.Logger
}

func NewIdentityService(
	vault repository.VaultRepository,
	sessions *session.Store,
	pending *session.PendingStore,
	claims *ClaimService,
	mailer mail.Mailer,
	identityURL string,
	logger *slog.Logger,
) *IdentityService {
	return &IdentityService{
		vault:       vault,
		sessions:    sessions,
		pending:     pending,
		claims:      claims,
		mailer:      mailer,
		identityURL: identityURL,
		logger:      logger,
	}
}

// List returns the session's identity cache, fetching it on first use.
func (s *IdentityService) List(sess *domain.Session, ip string) ([]domain.IdentityView, error) {
	if len(sess.Identities) == 0 {
		s.logger.Info("fetching identities", "vault", sess.Vault, "ip", ip)
		idents, err := s.vault.ListIdentities(sess.Vault)
		if err != nil {
			return nil, err
		}
		sess.Identities = identityViews(idents, sess.PrimaryIdentity)
	}
	return sess.Identities, nil
}

// RequestAdd starts linking a new email to the session's account and
// dispatches the confirmation link.
func (s *IdentityService) RequestAdd(sess *domain.Session, email, ip string) error {
	if s.pending.Has(sess.Vault, email) {
		return ErrIdentityPending
	}

	if _, err := s.List(sess, ip); err != nil {
		return err
	}
	if len(sess.Identities) == 0 {
		// the cache could not be filled, refuse rather than guess
		return ErrIdentityTaken
	}
	if len(sess.Identities) >= MaxIdentities {
		return ErrTooManyIdentities
	}

	for _, ident := range sess.Identities {
		if ident.Email == email {
			return ErrIdentityTaken
		}
	}
	if _, err := s.vault.FindIdentityByEmail(email); err == nil {
		return ErrIdentityTaken
	} else if !errors.Is(err, repository.ErrIdentityNotFound) {
		return err
	}

	token := s.pending.NewToken()
	s.pending.Set(token, &domain.PendingIdentity{
		IP:    ip,
		Vault: sess.Vault,
		Email: email,
	})

	s.logger.Info("starting identity validation", "vault", sess.Vault, "ip", ip)
	s.sendMail(email, "The Mana World identity validation",
		"You are receiving this email because someone (you?) has requested to link your email address "+
			"to a Vault account.\nIf you did not initiate this process, please ignore this email.\n\n"+
			"To confirm, use this link:\n"+s.identityURL+token)
	return nil
}

// ConfirmAdd consumes a link token and creates the identity. The new
// address is immediately swept for claimable legacy accounts, and a
// live session for the owning account picks up the identity.
func (s *IdentityService) ConfirmAdd(token, email, ip string) (*domain.Identity, error) {
	pending := s.pending.Get(token)
	if pending == nil || pending.Email != email {
		return nil, ErrLinkExpired
	}

	ident := &domain.Identity{UserID: pending.Vault, Email: pending.Email}
	if err := s.vault.CreateIdentity(ident); err != nil {
		return nil, err
	}
	if err := s.vault.CreateIdentityLog(&domain.IdentityLog{
		UserID:     pending.Vault,
		IdentityID: ident.ID,
		Action:     "ADD",
		IP:         ip,
	}); err != nil {
		s.logger.Error("failed to write identity log", "error", err)
	}

	if err := s.claims.ClaimByEmail(pending.Email, pending.Vault, nil, ip); err != nil {
		s.logger.Error("claim-by-email sweep failed", "vault", pending.Vault, "error", err)
	}

	if sess := s.sessions.FindAuthenticated(pending.Vault); sess != nil {
		sess.Identities = append(sess.Identities, domain.IdentityView{
			ID:    ident.ID,
			Email: ident.Email,
			Added: ident.AddedDate,
		})
	}

	s.pending.Delete(token)
	s.logger.Info("added a new identity", "vault", pending.Vault, "ip", ip)
	return ident, nil
}

func (s *IdentityService) sendMail(to, subject, body string) {
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
