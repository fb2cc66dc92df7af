package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterWindow(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRateLimiter(client, 2, time.Minute)
	ctx := context.Background()

	allow := func(key string) bool {
		t.Helper()
		ok, err := l.Allow(ctx, key)
		require.NoError(t, err)
		return ok
	}

	assert.True(t, allow("submit:team:Alpha"))
	assert.True(t, allow("submit:team:Alpha"))
	assert.False(t, allow("submit:team:Alpha"))
	assert.True(t, allow("submit:team:Beta"), "keys have separate budgets")

	ttl := mr.TTL("ratelimit:submit:team:Alpha")
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, time.Minute)

	// later hits must not push the window out
	mr.FastForward(30 * time.Second)
	assert.False(t, allow("submit:team:Alpha"))
	assert.LessOrEqual(t, mr.TTL("ratelimit:submit:team:Alpha"), 30*time.Second)

	mr.FastForward(31 * time.Second)
	assert.True(t, allow("submit:team:Alpha"))
}

func TestRateLimiterReportsRedisErrors(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRateLimiter(client, 2, time.Minute)

	mr.SetError("LOADING")
	_, err := l.Allow(context.Background(), "enroll:ip:10.0.0.1")
	assert.Error(t, err)
}
