package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWithExpiry increments the counter and starts the window on the first hit,
// atomically so a crash between the two calls cannot leave an immortal key.
var incrWithExpiry = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {current, redis.call('PTTL', KEYS[1])}
`)

// RedisLimiter is a fixed-window counter shared by every API instance.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	max    int
	window time.Duration
}

// NewRedisLimiter builds a shared limiter allowing max attempts per window.
func NewRedisLimiter(client redis.UniversalClient, prefix string, max int, window time.Duration) *RedisLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix, max: max, window: window}
}

// Allow records one attempt for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := incrWithExpiry.Run(ctx, l.client, []string{l.prefix + ":" + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit incr: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("ratelimit incr: unexpected reply %v", res)
	}

	count := int(res[0])
	decision := Decision{Allowed: count <= l.max, Count: count}
	if !decision.Allowed {
		decision.RetryAfter = time.Duration(res[1]) * time.Millisecond
		if decision.RetryAfter <= 0 {
			decision.RetryAfter = l.window
		}
	}
	return decision, nil
}
