package cache

import (
	"context"
	"testing"
	"time"

	"decryptrace/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateAt(version int64, active bool) *model.GameState {
	st := model.DefaultGameState()
	st.Version = version
	st.Active = active
	return st
}

func TestGameStateCacheKeepsNewestVersion(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewGameStateCache(client)
	ctx := context.Background()

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, stateAt(2, true)))
	assert.Positive(t, mr.TTL(gameStateKey))

	tests := []struct {
		name        string
		state       *model.GameState
		wantVersion int64
		wantActive  bool
	}{
		{"older write is ignored", stateAt(1, false), 2, true},
		{"same version is ignored", stateAt(2, false), 2, true},
		{"newer write replaces", stateAt(3, false), 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, tt.state))
			got, err := c.Get(ctx)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantVersion, got.Version)
			assert.Equal(t, tt.wantActive, got.Active)
			assert.Equal(t, model.GameStateID, got.ID)
		})
	}
}

func TestGameStateCacheOverwritesUnreadableEntry(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewGameStateCache(client)
	ctx := context.Background()

	require.NoError(t, mr.Set(gameStateKey, "not json"))
	require.NoError(t, c.Set(ctx, stateAt(1, true)))

	got, err := c.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Active)
}

func TestGameStateCacheExpiresAndDeletes(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewGameStateCache(client)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, stateAt(4, true)))
	mr.FastForward(5*time.Minute + time.Second)
	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, stateAt(1, false)))
	require.NoError(t, c.Delete(ctx))
	got, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
