package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// EventBus relays encoded broadcast envelopes between server instances
type EventBus interface {
	Publish(ctx context.Context, payload []byte) error
	// Subscribe streams payloads until ctx is done or the returned closer is called
	Subscribe(ctx context.Context) (<-chan []byte, func() error)
}

type redisEventBus struct {
	client  *redis.Client
	channel string
}

// NewEventBus creates a Redis pub/sub event bus
func NewEventBus(client *redis.Client) EventBus {
	return &redisEventBus{
		client:  client,
		channel: "game:events",
	}
}

func (b *redisEventBus) Publish(ctx context.Context, payload []byte) error {
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *redisEventBus) Subscribe(ctx context.Context) (<-chan []byte, func() error) {
	sub := b.client.Subscribe(ctx, b.channel)
	out := make(chan []byte, 64)

	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, sub.Close
}
