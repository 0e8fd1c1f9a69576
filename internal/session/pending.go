package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/themanaworld/api/internal/domain"
)

// DefaultPendingLifetime bounds an unconfirmed identity link.
const DefaultPendingLifetime = 30 * time.Minute

// PendingStore holds identity links awaiting email confirmation. The
// token namespace is separate from session tokens and entries are not
// re-hydrated on read: a link is good for its original lifetime only.
type PendingStore struct {
	mu       sync.Mutex
	pending  map[string]*domain.PendingIdentity
	timers   map[string]*time.Timer
	lifetime time.Duration
}

func NewPendingStore(lifetime time.Duration) *PendingStore {
	if lifetime <= 0 {
		lifetime = DefaultPendingLifetime
	}
	return &PendingStore{
		pending:  make(map[string]*domain.PendingIdentity),
		timers:   make(map[string]*time.Timer),
		lifetime: lifetime,
	}
}

func (p *PendingStore) Get(token string) *domain.PendingIdentity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending[token]
}

func (p *PendingStore) Set(token string, ident *domain.PendingIdentity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.timers[token]; ok {
		t.Stop()
	}
	p.pending[token] = ident
	p.timers[token] = time.AfterFunc(p.lifetime, func() { p.Delete(token) })
}

func (p *PendingStore) Delete(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.timers[token]; ok {
		t.Stop()
		delete(p.timers, token)
	}
	if _, ok := p.pending[token]; !ok {
		return false
	}
	delete(p.pending, token)
	return true
}

// Has reports whether a link for the same (vault, email) pair is
// already outstanding. Duplicate requests are rejected while one is.
func (p *PendingStore) Has(vault uint, email string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ident := range p.pending {
		if ident.Vault == vault && ident.Email == email {
			return true
		}
	}
	return false
}

// NewToken returns a fresh link token not colliding with an
// outstanding one.
func (p *PendingStore) NewToken() string {
	for {
		token := uuid.NewString()
		p.mu.Lock()
		_, taken := p.pending[token]
		p.mu.Unlock()
		if !taken {
			return token
		}
	}
}
