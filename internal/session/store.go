package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/themanaworld/api/internal/domain"
)

const (
	// DefaultBaseLifetime bounds a session that never authenticates.
	DefaultBaseLifetime = 30 * time.Minute
	// DefaultAuthedLifetime applies once the emailed token is confirmed.
	DefaultAuthedLifetime = 6 * time.Hour
)

// Store holds live sessions keyed by opaque token. Every Get and Set
// re-hydrates the record: the expiry is recomputed from now and the
// deletion timer is re-armed. Probing a token that does not exist
// re-hydrates nothing, so an abandoned pending session always dies at
// the base lifetime no matter how hard it is being guessed at.
//
// Timers live in a side table, never on the Session itself; deleting
// an entry cancels its timer so a late callback can't touch a record
// that was already replaced.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	timers   map[string]*time.Timer

	baseLifetime   time.Duration
	authedLifetime time.Duration
}

func NewStore(base, authed time.Duration) *Store {
	if base <= 0 {
		base = DefaultBaseLifetime
	}
	if authed <= 0 {
		authed = DefaultAuthedLifetime
	}
	return &Store{
		sessions:       make(map[string]*domain.Session),
		timers:         make(map[string]*time.Timer),
		baseLifetime:   base,
		authedLifetime: authed,
	}
}

// hydrate recomputes the expiry and re-arms the deletion timer.
// Callers must hold s.mu.
func (s *Store) hydrate(token string, sess *domain.Session) {
	lifetime := s.baseLifetime
	if sess.Authenticated {
		lifetime = s.authedLifetime
	}
	if t, ok := s.timers[token]; ok {
		t.Stop()
	}
	sess.Expires = time.Now().UTC().Add(lifetime)
	s.timers[token] = time.AfterFunc(lifetime, func() { s.Delete(token) })
}

// Get returns the session for token, re-hydrated, or nil.
func (s *Store) Get(token string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil
	}
	s.hydrate(token, sess)
	return sess
}

// Set stores (and re-hydrates) the session under token.
func (s *Store) Set(token string, sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = sess
	s.hydrate(token, sess)
}

// Delete removes the session and cancels its expiry timer. It reports
// whether a session was present.
func (s *Store) Delete(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[token]; ok {
		t.Stop()
		delete(s.timers, token)
	}
	if _, ok := s.sessions[token]; !ok {
		return false
	}
	delete(s.sessions, token)
	return true
}

// Peek returns the session without re-hydrating it. Sweeps use this
// so that scanning the store never extends anybody's lifetime.
func (s *Store) Peek(token string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[token]
}

// Tokens returns a snapshot of all live tokens.
func (s *Store) Tokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens := make([]string, 0, len(s.sessions))
	for token := range s.sessions {
		tokens = append(tokens, token)
	}
	return tokens
}

// InvalidateOthers deletes every session belonging to vault except the
// one stored under keep, enforcing the single-active-session policy.
// It returns the number of sessions removed.
func (s *Store) InvalidateOthers(vault uint, keep string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, sess := range s.sessions {
		if token == keep || sess.Vault != vault {
			continue
		}
		if t, ok := s.timers[token]; ok {
			t.Stop()
			delete(s.timers, token)
		}
		delete(s.sessions, token)
		removed++
	}
	return removed
}

// FindAuthenticated returns the authenticated session for vault, if
// any, without re-hydrating it.
func (s *Store) FindAuthenticated(vault uint) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.Vault == vault && sess.Authenticated {
			return sess
		}
	}
	return nil
}

// NewToken returns a fresh token guaranteed not to collide with a
// live session.
func (s *Store) NewToken() string {
	for {
		token := uuid.NewString()
		s.mu.Lock()
		_, taken := s.sessions[token]
		s.mu.Unlock()
		if !taken {
			return token
		}
	}
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
