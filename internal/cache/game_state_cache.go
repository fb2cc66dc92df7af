package cache

import (
	"context"
	"encoding/json"
	"time"

	"decryptrace/internal/model"

	"github.com/redis/go-redis/v9"
)

// GameStateCache holds the newest known game state for snapshot reads
type GameStateCache interface {
	Get(ctx context.Context) (*model.GameState, error)
	// Set stores state unless the cached copy has the same or a higher version
	Set(ctx context.Context, state *model.GameState) error
	Delete(ctx context.Context) error
}

type gameStateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameStateCache creates a new game state cache
func NewGameStateCache(client *redis.Client) GameStateCache {
	return &gameStateCache{
		client: client,
		ttl:    5 * time.Minute, // every transition rewrites it
	}
}

const gameStateKey = "game:state"

// KEYS[1] state key; ARGV[1] encoded state, ARGV[2] its version, ARGV[3] ttl in ms
var setIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local ok, doc = pcall(cjson.decode, cur)
	if ok and type(doc) == 'table' and tonumber(doc.version) and tonumber(doc.version) >= tonumber(ARGV[2]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

func (c *gameStateCache) Get(ctx context.Context) (*model.GameState, error) {
	data, err := c.client.Get(ctx, gameStateKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.GameState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	state.ID = model.GameStateID
	return &state, nil
}

func (c *gameStateCache) Set(ctx context.Context, state *model.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return setIfNewer.Run(ctx, c.client, []string{gameStateKey}, data, state.Version, c.ttl.Milliseconds()).Err()
}

func (c *gameStateCache) Delete(ctx context.Context) error {
	return c.client.Del(ctx, gameStateKey).Err()
}
