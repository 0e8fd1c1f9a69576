package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisBudgetScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisBudget shares the attempt counters across API instances. The
// window is fixed rather than per-attempt: the whole budget refills
// when the key expires. Close enough for lockout purposes and cheap
// on the Redis side.
type RedisBudget struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisBudget(client redis.UniversalClient, prefix string) *RedisBudget {
	if prefix == "" {
		prefix = "brute"
	}
	return &RedisBudget{client: client, prefix: prefix}
}

func (b *RedisBudget) Consume(ctx context.Context, key string, max int, window time.Duration) (int, error) {
	if b.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	windowMS := int64(window / time.Millisecond)
	if windowMS <= 0 {
		windowMS = 1000
	}
	raw, err := redisBudgetScript.Run(ctx, b.client, []string{b.prefix + ":" + key}, windowMS).Result()
	if err != nil {
		return 0, err
	}
	count, ok := raw.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected redis script response type %T", raw)
	}
	remaining := max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
