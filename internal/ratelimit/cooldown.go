package ratelimit

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// MaxThreatLevel is the per-IP level at which all requests are
	// refused outright.
	MaxThreatLevel = 5
	// BanDecay is how long each threat level persists before decaying
	// by one.
	BanDecay = 6 * time.Hour
	// threatThreshold: any cooldown at least this long counts as a
	// bad action.
	threatThreshold = 5 * time.Minute
)

type cooldownEntry struct {
	expires time.Time
}

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed    bool
	Banned     bool
	RetryAfter time.Duration
}

// Limiter applies per-(route, ip) cooldowns and escalates repeat
// offenders: every cooldown of five minutes or more bumps the IP's
// threat level, and at MaxThreatLevel the IP is refused everything
// until the decay timers bring it back down. Expiry timers live in a
// side table keyed the same way as the entries.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]cooldownEntry
	timers  map[string]*time.Timer
	threat  map[string]int

	maxThreat int
	banDecay  time.Duration
	logger    *slog.Logger
}

func NewLimiter(logger *slog.Logger) *Limiter {
	return &Limiter{
		entries:   make(map[string]cooldownEntry),
		timers:    make(map[string]*time.Timer),
		threat:    make(map[string]int),
		maxThreat: MaxThreatLevel,
		banDecay:  BanDecay,
		logger:    logger,
	}
}

func key(ip, route string) string { return route + "\x00" + ip }

// Apply sets (or replaces) the cooldown for (route, ip) and schedules
// its removal. Long cooldowns also raise the IP's threat level.
func (l *Limiter) Apply(ip, route string, d time.Duration) {
	if d <= 0 {
		return
	}
	k := key(ip, route)

	l.mu.Lock()
	if t, ok := l.timers[k]; ok {
		t.Stop()
	}
	l.entries[k] = cooldownEntry{expires: time.Now().Add(d)}
	l.timers[k] = time.AfterFunc(d, func() {
		l.mu.Lock()
		delete(l.entries, k)
		delete(l.timers, k)
		l.mu.Unlock()
	})

	if d < threatThreshold {
		l.mu.Unlock()
		return
	}

	level := l.threat[ip] + 1
	if level > l.maxThreat {
		l.mu.Unlock()
		l.logger.Warn("limiter: bad actor above max threat level", "ip", ip)
		return
	}
	l.threat[ip] = level
	time.AfterFunc(l.banDecay, func() { l.decay(ip) })
	l.mu.Unlock()

	if level == l.maxThreat {
		l.logger.Warn("limiter: banning ip", "ip", ip, "hours", l.banDecay.Hours())
	} else {
		l.logger.Warn("limiter: bad actor", "ip", ip, "threat_level", level)
	}
}

func (l *Limiter) decay(ip string) {
	l.mu.Lock()
	level := l.threat[ip]
	switch {
	case level <= 1:
		delete(l.threat, ip)
	default:
		l.threat[ip] = level - 1
	}
	l.mu.Unlock()

	if level == l.maxThreat {
		l.logger.Info("limiter: unbanning ip (ban expired)", "ip", ip)
	} else if level > 0 {
		l.logger.Info("limiter: decreasing threat level", "ip", ip, "was", level)
	}
}

// Check reports whether (route, ip) may proceed. A banned IP is
// refused regardless of per-route cooldowns.
func (l *Limiter) Check(ip, route string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[key(ip, route)]; ok {
		retry := time.Until(e.expires)
		if retry < 0 {
			retry = 0
		}
		return Decision{RetryAfter: retry}
	}
	if l.threat[ip] >= l.maxThreat {
		return Decision{Banned: true}
	}
	return Decision{Allowed: true}
}

// ThreatLevel reports the current threat level for ip.
func (l *Limiter) ThreatLevel(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.threat[ip]
}
