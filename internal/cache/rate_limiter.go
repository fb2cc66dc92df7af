package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request counter shared by all instances
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type rateLimiter struct {
	client *redis.Client
	rate   int
	window time.Duration
}

// NewRateLimiter allows rate requests per key per window
func NewRateLimiter(client *redis.Client, rate int, window time.Duration) RateLimiter {
	return &rateLimiter{
		client: client,
		rate:   rate,
		window: window,
	}
}

func (l *rateLimiter) key(key string) string {
	return fmt.Sprintf("ratelimit:%s", key)
}

// the first hit of a window starts its expiry; works on servers without EXPIRE NX
var incrWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

func (l *rateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := incrWindow.Run(ctx, l.client, []string{l.key(key)}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n <= int64(l.rate), nil
}
