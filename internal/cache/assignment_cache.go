package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// AssignmentCache maps team names to their message ID in one Redis hash.
// Claim is add-if-absent, so concurrent first requests from a team agree.
type AssignmentCache interface {
	Get(ctx context.Context, teamName string) (string, error)
	// Claim stores messageID unless the team already has one, and returns the stored value
	Claim(ctx context.Context, teamName, messageID string) (string, error)
	Release(ctx context.Context, teamName string) error
	Clear(ctx context.Context) error
}

type assignmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAssignmentCache creates a new assignment cache
func NewAssignmentCache(client *redis.Client) AssignmentCache {
	return &assignmentCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

const assignmentsKey = "game:assignments"

func (c *assignmentCache) Get(ctx context.Context, teamName string) (string, error) {
	id, err := c.client.HGet(ctx, assignmentsKey, teamName).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}

func (c *assignmentCache) Claim(ctx context.Context, teamName, messageID string) (string, error) {
	pipe := c.client.TxPipeline()
	pipe.HSetNX(ctx, assignmentsKey, teamName, messageID)
	get := pipe.HGet(ctx, assignmentsKey, teamName)
	pipe.Expire(ctx, assignmentsKey, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return get.Val(), nil
}

func (c *assignmentCache) Release(ctx context.Context, teamName string) error {
	return c.client.HDel(ctx, assignmentsKey, teamName).Err()
}

func (c *assignmentCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, assignmentsKey).Err()
}
