package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentCacheClaimKeepsFirstHolder(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewAssignmentCache(client)
	ctx := context.Background()

	id, err := c.Get(ctx, "Alpha")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = c.Claim(ctx, "Alpha", "m001")
	require.NoError(t, err)
	assert.Equal(t, "m001", id)

	id, err = c.Claim(ctx, "Alpha", "m002")
	require.NoError(t, err)
	assert.Equal(t, "m001", id)

	id, err = c.Get(ctx, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, "m001", id)
	assert.Positive(t, mr.TTL(assignmentsKey))
}

func TestAssignmentCacheConcurrentClaimsAgree(t *testing.T) {
	_, client := newTestRedis(t)
	c := NewAssignmentCache(client)
	ctx := context.Background()

	const n = 8
	got := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := c.Claim(ctx, "Alpha", fmt.Sprintf("m%03d", i))
			assert.NoError(t, err)
			got[i] = id
		}()
	}
	wg.Wait()

	for _, id := range got {
		assert.Equal(t, got[0], id)
	}
}

func TestAssignmentCacheReleaseAndClear(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewAssignmentCache(client)
	ctx := context.Background()

	_, err := c.Claim(ctx, "Alpha", "m001")
	require.NoError(t, err)
	_, err = c.Claim(ctx, "Beta", "m002")
	require.NoError(t, err)

	require.NoError(t, c.Release(ctx, "Alpha"))
	id, err := c.Get(ctx, "Alpha")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = c.Claim(ctx, "Alpha", "m003")
	require.NoError(t, err)
	assert.Equal(t, "m003", id)

	require.NoError(t, c.Clear(ctx))
	assert.False(t, mr.Exists(assignmentsKey))
}
