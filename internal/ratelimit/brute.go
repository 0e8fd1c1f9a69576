package ratelimit

import (
	"context"
	"sync"
	"time"
)

// AttemptBudget hands out a bounded number of attempts per key inside
// a rolling window. Consume returns how many attempts remain; zero
// means the caller should apply a lockout-sized cooldown instead of a
// small one.
type AttemptBudget interface {
	Consume(ctx context.Context, key string, max int, window time.Duration) (int, error)
}

// MemoryBudget keeps the counters in process. Each allowed attempt
// schedules its own expiry, so the budget refills one attempt at a
// time rather than all at once.
type MemoryBudget struct {
	mu       sync.Mutex
	attempts map[string]int
}

func NewMemoryBudget() *MemoryBudget {
	return &MemoryBudget{attempts: make(map[string]int)}
}

func (b *MemoryBudget) Consume(_ context.Context, key string, max int, window time.Duration) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attempts[key] >= max {
		return 0, nil
	}
	b.attempts[key]++
	time.AfterFunc(window, func() {
		b.mu.Lock()
		if b.attempts[key] > 0 {
			b.attempts[key]--
		}
		if b.attempts[key] == 0 {
			delete(b.attempts, key)
		}
		b.mu.Unlock()
	})
	return max - b.attempts[key], nil
}
