package domain

import (
	"encoding/json"
	"time"
)

// Session caches everything the API knows about one logged-in (or
// logging-in) user. It only ever lives in memory; the store that owns
// it re-hydrates Expires on every access.
type Session struct {
	// IP that was used to open the session.
	IP string
	// Email is the lower-cased address of the identity used this login.
	Email string
	// Secret is disclosed to the client exactly once, after
	// authentication, and must accompany every privileged call.
	Secret string
	// Vault is the owning vault account id, 0 until resolved.
	Vault uint
	// Identity is the id of the identity used this login, 0 for a
	// first-ever login.
	Identity uint
	// PrimaryIdentity is the account's designated primary identity id.
	PrimaryIdentity uint
	// AllowNonPrimary permits logging in with a non-primary identity.
	AllowNonPrimary bool
	// StrictIPCheck rejects session reuse from a different IP.
	StrictIPCheck bool
	// Authenticated flips when the emailed token is confirmed.
	Authenticated bool
	// Expires is maintained by the session store.
	Expires time.Time

	// caches, populated on authentication and kept fresh by the
	// linkage engine
	Identities     []IdentityView
	LegacyAccounts []*LegacyAccount
	GameAccounts   []*EvolAccount
}

func NewSession(ip, email string) *Session {
	return &Session{
		IP:              ip,
		Email:           email,
		AllowNonPrimary: true,
	}
}

// MarshalJSON keeps the wire shape minimal: clients only ever see the
// expiry and the identity that was used to log in.
func (s *Session) MarshalJSON() ([]byte, error) {
	var identity any
	if s.Identity != 0 {
		identity = s.Identity
	}
	return json.Marshal(map[string]any{
		"expires":  s.Expires,
		"identity": identity,
	})
}

// PendingIdentity is a requested-but-unconfirmed secondary identity,
// keyed by its emailed link token in a store separate from sessions.
type PendingIdentity struct {
	IP    string
	Vault uint
	Email string
}
